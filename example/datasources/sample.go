/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package datasources

// Sample returns a subsystem with one XA data-source and one driver.
func Sample() *DataSources {
	enabled := true
	return &DataSources{
		StatisticsEnabled: &enabled,
		Resources: &DataSourcesResources{
			XADataSources: []*XADataSource{{
				Name:       "ExampleXADS",
				JNDIName:   "java:jboss/datasources/ExampleXADS",
				DriverName: "h2",
				Enabled:    &enabled,
				MinPool:    1,
				MaxPool:    20,
				Properties: []*XADatasourceProperties{
					{Key: "URL", Value: "jdbc:h2:mem:test"},
					{Key: "User", Value: "sa"},
				},
			}},
			JDBCDrivers: []*JDBCDriver{{
				DriverName:        "h2",
				DriverModuleName:  "com.h2database.h2",
				XADataSourceClass: "org.h2.jdbcx.JdbcDataSource",
			}},
		},
	}
}
