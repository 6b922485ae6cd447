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

// Package datasources is a small entity model of the datasources subsystem.
// It declares its types in all three supported ways: struct tags
// (DataSources, XADatasourceProperties), apis.Declarer (XADataSource) and
// the registry (JDBCDriver, see Register).
package datasources

import (
	"reflect"

	"dirpx.dev/opx/apis"
)

// DataSources is the subsystem root.
type DataSources struct {
	_                 struct{}              `opx:"address=/subsystem=datasources"`
	StatisticsEnabled *bool                 `opx:"attr=statistics-enabled"`
	Resources         *DataSourcesResources `opx:"subresources"`
}

// DataSourcesResources groups the subsystem's collections.
type DataSourcesResources struct {
	XADataSources []*XADataSource `opx:"list,order=1"`
	JDBCDrivers   []*JDBCDriver   `opx:"list,order=2"`
}

// XADataSource is a JDBC XA data-source.
type XADataSource struct {
	Name       string
	JNDIName   string `opx:"attr=jndi-name"`
	DriverName string `opx:"attr=driver-name"`
	Enabled    *bool  `opx:"attr=enabled"`
	MinPool    int    `opx:"attr=min-pool-size"`
	MaxPool    int    `opx:"attr=max-pool-size"`
	Statistics *PoolStatistics
	Properties []*XADatasourceProperties
}

// OpxDescriptor declares the XA data-source address and children.
func (XADataSource) OpxDescriptor() apis.Descriptor {
	return apis.Descriptor{
		Address: "/subsystem=datasources/xa-data-source=*",
		Singletons: []apis.Accessor{{
			Name: "Statistics",
			Get: func(e any) (any, error) {
				return asXA(e).Statistics, nil
			},
		}},
		Subresources: &apis.Subresources{
			Name: "Properties",
			Get:  func(e any) (any, error) { return asXA(e), nil },
			Lists: []apis.ListAccessor{{
				Name: "Properties",
				Get: func(h any) ([]any, error) {
					return members(asXA(h).Properties), nil
				},
			}},
		},
	}
}

// OpxKey returns the data-source name.
func (x *XADataSource) OpxKey() string {
	return x.Name
}

// PoolStatistics is the pool statistics singleton of a data-source.
type PoolStatistics struct {
	_                 struct{} `opx:"address=statistics=pool"`
	StatisticsEnabled bool     `opx:"attr=statistics-enabled"`
}

// XADatasourceProperties is one XA data-source property.
type XADatasourceProperties struct {
	_     struct{} `opx:"address=/subsystem=datasources/xa-data-source=*/xa-datasource-properties=*"`
	Key   string   `opx:"key"`
	Value string   `opx:"attr=value"`
}

// JDBCDriver is an installed JDBC driver. It carries no declaration of its
// own; Register adds one.
type JDBCDriver struct {
	DriverName        string
	DriverModuleName  string `opx:"attr=driver-module-name"`
	XADataSourceClass string `opx:"attr=driver-xa-datasource-class-name"`
}

// JDBCDriverDescriptor is the registry declaration of JDBCDriver.
func JDBCDriverDescriptor() apis.Descriptor {
	return apis.Descriptor{
		Address: "/subsystem=datasources/jdbc-driver=*",
		Key: func(e any) (string, error) {
			switch d := e.(type) {
			case *JDBCDriver:
				return d.DriverName, nil
			case JDBCDriver:
				return d.DriverName, nil
			}
			return "", nil
		},
	}
}

// Register adds the declarations this model needs to reg.
func Register(reg apis.Registry) error {
	return reg.Register(reflect.TypeOf(JDBCDriver{}), JDBCDriverDescriptor())
}

func asXA(e any) *XADataSource {
	switch x := e.(type) {
	case *XADataSource:
		return x
	case XADataSource:
		return &x
	}
	return nil
}

func members[T any](items []T) []any {
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
