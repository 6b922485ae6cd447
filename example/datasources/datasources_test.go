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

package datasources_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/opx/adapter"
	"dirpx.dev/opx/builder"
	"dirpx.dev/opx/config"
	"dirpx.dev/opx/example/datasources"
	"dirpx.dev/opx/marshal"
)

func newMarshaller(t *testing.T) *marshal.Marshaller {
	t.Helper()
	cfg := config.DefaultConfig()
	b := builder.New()
	reg := b.BuildRegistry(cfg, nil, nil)
	require.NoError(t, datasources.Register(reg))
	return marshal.New(b.BuildResolver(cfg, reg, nil, nil),
		marshal.WithConfig(cfg),
		marshal.WithBinder(adapter.NewTagBinder()),
	)
}

func TestSample(t *testing.T) {
	res, err := newMarshaller(t).Marshal(datasources.Sample())
	require.NoError(t, err)
	require.True(t, res.Complete(), res.Err())

	got := make([]string, 0, res.Len())
	for _, op := range res.Operations {
		got = append(got, op.String())
	}
	want := []string{
		"add /subsystem=datasources",
		"add /subsystem=datasources/xa-data-source=ExampleXADS",
		"add /subsystem=datasources/xa-data-source=ExampleXADS/xa-datasource-properties=URL",
		"add /subsystem=datasources/xa-data-source=ExampleXADS/xa-datasource-properties=User",
		"add /subsystem=datasources/jdbc-driver=h2",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("operations (-want +got):\n%s", diff)
	}

	b, err := res.Operations[1].MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"operation":"add","address":[{"subsystem":"datasources"},{"xa-data-source":"ExampleXADS"}],`+
			`"jndi-name":"java:jboss/datasources/ExampleXADS","driver-name":"h2","enabled":true,"min-pool-size":1,"max-pool-size":20}`,
		string(b))

	v, ok := res.Operations[4].Get("driver-module-name")
	require.True(t, ok)
	assert.Equal(t, "com.h2database.h2", v)
}

func TestStatisticsSingleton(t *testing.T) {
	ds := &datasources.DataSources{Resources: &datasources.DataSourcesResources{
		XADataSources: []*datasources.XADataSource{{
			Name:       "A",
			Statistics: &datasources.PoolStatistics{StatisticsEnabled: true},
			Properties: []*datasources.XADatasourceProperties{{Key: "URL"}},
		}},
	}}
	res, err := newMarshaller(t).Marshal(ds)
	require.NoError(t, err)

	got := make([]string, 0, res.Len())
	for _, op := range res.Operations {
		got = append(got, op.Address.String())
	}
	assert.Equal(t, []string{
		"/subsystem=datasources",
		"/subsystem=datasources/xa-data-source=A",
		"/subsystem=datasources/xa-data-source=A/statistics=pool",
		"/subsystem=datasources/xa-data-source=A/xa-datasource-properties=URL",
	}, got)
}

func TestUnregisteredDriverIsFatal(t *testing.T) {
	cfg := config.DefaultConfig()
	b := builder.New()
	reg := b.BuildRegistry(cfg, nil, nil)
	m := marshal.New(b.BuildResolver(cfg, reg, nil, nil))

	res, err := m.Marshal(datasources.Sample())
	require.ErrorIs(t, err, marshal.ErrMissingAddressDeclaration)
	assert.Nil(t, res)
}
