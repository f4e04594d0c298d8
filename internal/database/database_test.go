package database

import (
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noel_back_end/internal/config"
)

func TestLoadScyllaConfigs(t *testing.T) {
	configs := loadScyllaConfigs(config.ScyllaConfig{
		Hosts:            []string{"10.0.0.1", "10.0.0.2"},
		ProductsKeyspace: "noel_products",
		ProductsRole:     "products_rw",
		ProductsPassword: "p1",
		OrdersKeyspace:   "noel_orders",
		OrdersRole:       "orders_rw",
		OrdersPassword:   "p2",
	})

	require.Len(t, configs, 2)
	assert.Equal(t, "products_rw", configs["noel_products"].Username)
	assert.Equal(t, "orders_rw", configs["noel_orders"].Username)
	assert.Equal(t, gocql.Quorum, configs["noel_orders"].Consistency)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, configs["noel_orders"].Hosts)
}

func TestCreateScyllaCluster(t *testing.T) {
	cluster := createScyllaCluster(ScyllaKeyspaceConfig{
		Hosts:      []string{"127.0.0.1"},
		Keyspace:   "noel_products",
		Username:   "products_rw",
		Password:   "secret",
		SSLEnabled: true,
		CACertPath: "/etc/scylla/ca.pem",
	})

	assert.Equal(t, "noel_products", cluster.Keyspace)
	require.NotNil(t, cluster.SslOpts)
	assert.Equal(t, "/etc/scylla/ca.pem", cluster.SslOpts.CaPath)
	assert.IsType(t, gocql.PasswordAuthenticator{}, cluster.Authenticator)

	anonymous := createScyllaCluster(ScyllaKeyspaceConfig{Hosts: []string{"127.0.0.1"}})
	assert.Nil(t, anonymous.Authenticator)
	assert.Nil(t, anonymous.SslOpts)
}

func TestSessionsRequireKeyspace(t *testing.T) {
	Scylla = nil
	_, err := GetProductsSession()
	assert.Error(t, err)
	_, err = GetOrdersSession()
	assert.Error(t, err)
}
