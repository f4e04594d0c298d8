package database

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"

	"noel_back_end/internal/config"
)

// --- Configuration ScyllaDB ---
type ScyllaKeyspaceConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	SSLEnabled  bool
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

type ScyllaManager struct {
	sessions map[string]*gocql.Session // keyspace → session
	configs  map[string]ScyllaKeyspaceConfig
	products string
	orders   string
	mu       sync.Mutex
}

// --- Variables Globales ---
var (
	Scylla  *ScyllaManager
	Redis   *redis.Client
	Elastic *elasticsearch.Client // nil si ELASTIC_URL absent
	MinIO   *minio.Client         // nil si MINIO_ENDPOINT absent
)

// --- Initialisation ---
func ConnectDatabases(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. ScyllaDB (produits + commandes)
	if err := InitScyllaDB(cfg.Scylla); err != nil {
		return fmt.Errorf("initialisation ScyllaDB: %w", err)
	}

	// 2. Redis
	if err := connectRedis(ctx, cfg.Redis); err != nil {
		return err
	}

	// 3. Elasticsearch et MinIO sont optionnels
	connectElastic(cfg.Elastic)
	connectMinIO(ctx, cfg.MinIO)

	log.Println("✅ Toutes les bases de données sont connectées")
	return nil
}

// =============================================
// SCYLLA DB (Multi-Keyspaces avec SSL & Rôles)
// =============================================

// InitScyllaDB ouvre une session par keyspace configuré
func InitScyllaDB(cfg config.ScyllaConfig) error {
	Scylla = &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		configs:  loadScyllaConfigs(cfg),
		products: cfg.ProductsKeyspace,
		orders:   cfg.OrdersKeyspace,
	}

	for keyspace := range Scylla.configs {
		if _, err := Scylla.GetSession(keyspace); err != nil {
			return fmt.Errorf("échec initialisation keyspace %s: %w", keyspace, err)
		}
	}

	// Note: les tables sont créées par la commande `schema`
	return nil
}

func loadScyllaConfigs(cfg config.ScyllaConfig) map[string]ScyllaKeyspaceConfig {
	configs := make(map[string]ScyllaKeyspaceConfig)

	common := ScyllaKeyspaceConfig{
		Hosts:       cfg.Hosts,
		SSLEnabled:  cfg.SSLEnabled,
		CACertPath:  cfg.CACertPath,
		Timeout:     5 * time.Second,
		NumConns:    10,
		Consistency: gocql.Quorum,
	}

	// --- Keyspace Produits ---
	if ks := cfg.ProductsKeyspace; ks != "" {
		c := common
		c.Keyspace, c.Username, c.Password = ks, cfg.ProductsRole, cfg.ProductsPassword
		configs[ks] = c
	}

	// --- Keyspace Commandes ---
	if ks := cfg.OrdersKeyspace; ks != "" {
		c := common
		c.Keyspace, c.Username, c.Password = ks, cfg.OrdersRole, cfg.OrdersPassword
		configs[ks] = c
	}

	return configs
}

// createScyllaCluster crée une configuration de cluster pour un keyspace
func createScyllaCluster(config ScyllaKeyspaceConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(config.Hosts...)
	cluster.Keyspace = config.Keyspace
	cluster.Consistency = config.Consistency
	cluster.Timeout = config.Timeout
	cluster.NumConns = config.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second

	if config.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	if config.SSLEnabled {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 config.CACertPath,
			EnableHostVerification: config.CACertPath != "",
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// GetSession retourne la session du keyspace, recréée si elle ne répond plus
func (sm *ScyllaManager) GetSession(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	config, exists := sm.configs[keyspace]
	if !exists {
		return nil, fmt.Errorf("keyspace '%s' non configuré", keyspace)
	}

	if session, exists := sm.sessions[keyspace]; exists {
		if !session.Closed() {
			return session, nil
		}
		delete(sm.sessions, keyspace)
	}

	session, err := createScyllaCluster(config).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", keyspace, err)
	}

	sm.sessions[keyspace] = session
	log.Printf("✅ Nouvelle session ScyllaDB pour keyspace '%s' (utilisateur: %s)", keyspace, config.Username)
	return session, nil
}

// GetProductsSession session du keyspace produits (catalogue, configuration)
func GetProductsSession() (*gocql.Session, error) {
	if Scylla == nil || Scylla.products == "" {
		return nil, fmt.Errorf("SCYLLA_KS_PRODUCTS_KEYSPACE non configuré")
	}
	return Scylla.GetSession(Scylla.products)
}

// GetOrdersSession session du keyspace commandes (commandes, brouillons)
func GetOrdersSession() (*gocql.Session, error) {
	if Scylla == nil || Scylla.orders == "" {
		return nil, fmt.Errorf("SCYLLA_KS_ORDERS_KEYSPACE non configuré")
	}
	return Scylla.GetSession(Scylla.orders)
}

// Close ferme les sessions ScyllaDB et Redis
func Close() {
	if Scylla != nil {
		Scylla.mu.Lock()
		for keyspace, session := range Scylla.sessions {
			session.Close()
			log.Printf("🔌 Session ScyllaDB fermée pour keyspace '%s'", keyspace)
		}
		Scylla.mu.Unlock()
	}
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			log.Printf("⚠️ Fermeture Redis: %v", err)
		}
	}
}

// =============================================
// REDIS
// =============================================
func connectRedis(ctx context.Context, cfg config.RedisConfig) error {
	Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       0,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connexion Redis: %w", err)
	}
	log.Println("✅ Connecté à Redis")
	return nil
}

// =============================================
// ELASTICSEARCH (optionnel : recherche catalogue)
// =============================================
func connectElastic(cfg config.ElasticConfig) {
	if cfg.URL == "" {
		log.Println("⚠️ ELASTIC_URL absent, recherche désactivée")
		return
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		log.Printf("❌ Erreur création client Elasticsearch: %v", err)
		return
	}

	res, err := client.Info()
	if err != nil {
		log.Printf("❌ Erreur connexion Elasticsearch: %v", err)
		return
	}
	defer res.Body.Close()

	Elastic = client
	log.Println("✅ Connecté à Elasticsearch")
}

// =============================================
// MINIO (optionnel : photos produits)
// =============================================
func connectMinIO(ctx context.Context, cfg config.MinIOConfig) {
	if cfg.Endpoint == "" {
		log.Println("⚠️ MINIO_ENDPOINT absent, envoi de photos désactivé")
		return
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Printf("❌ Erreur connexion MinIO: %v", err)
		return
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		log.Printf("❌ Erreur vérification bucket MinIO: %v", err)
		return
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			log.Printf("❌ Erreur création bucket MinIO: %v", err)
			return
		}
		log.Println("🪣 Bucket créé :", cfg.Bucket)
	}

	MinIO = client
	log.Println("✅ Connecté à MinIO :", cfg.Endpoint)
}

// ApplySchema crée les tables manquantes dans les deux keyspaces
func ApplySchema(products, orders []string) error {
	ps, err := GetProductsSession()
	if err != nil {
		return err
	}
	for _, stmt := range products {
		if err := ps.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("schéma produits: %w", err)
		}
	}

	ords, err := GetOrdersSession()
	if err != nil {
		return err
	}
	for _, stmt := range orders {
		if err := ords.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("schéma commandes: %w", err)
		}
	}
	log.Println("✅ Schéma appliqué")
	return nil
}
