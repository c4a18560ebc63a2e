package cmd

import (
	"context"
	"event-ticket/common/auth"
	eventJetstream "event-ticket/common/jetstream"
	"event-ticket/common/otel"
	"event-ticket/outbound/gateway"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"log"
	"os"
)

func newCfg(name string) *viper.Viper {
	config := viper.New()

	config.SetConfigName(name)
	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	err := config.ReadInConfig()
	if err != nil {
		log.Fatalln(err)
	}

	err = os.Setenv("TZ", config.GetString("server.timezone"))
	if err != nil {
		log.Fatalln(err)
	}

	return config
}

func newDb(cfg *viper.Viper) *pgxpool.Pool {
	username := cfg.GetString("db.user")
	password := cfg.GetString("db.password")
	host := cfg.GetString("db.host")
	port := cfg.GetInt("db.port")
	database := cfg.GetString("db.name")
	maxConn := cfg.GetInt("db.pool.max")
	minConn := cfg.GetInt("db.pool.min")
	timezone := cfg.GetString("server.timezone")

	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?timezone=%s",
		username, password, host, port, database, timezone)

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		log.Fatalln(err)
	}

	config.MaxConns = int32(maxConn)
	config.MinConns = int32(minConn)
	config.ConnConfig.Tracer = &otel.PgxCustomTracer{}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalln(err)
	}

	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatalln(err)
	}

	return pool
}

func newRedis(cfg *viper.Viper) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.GetString("redis.addr"),
		Password: cfg.GetString("redis.password"),
		DB:       cfg.GetInt("redis.db"),
	})

	err := rdb.Ping(context.Background()).Err()
	if err != nil {
		log.Fatalln(err)
	}

	return rdb
}

func newNats(viper *viper.Viper) *nats.Conn {
	conn, err := nats.Connect(viper.GetString("nats.addr"), nats.Name(viper.GetString("otel.service_name")))
	if err != nil {
		log.Fatalln(err)
	}

	return conn
}

func newJs(conn *nats.Conn) jetstream.JetStream {
	js, err := jetstream.New(conn)
	if err != nil {
		log.Fatalln(err)
	}

	return js
}

func createStreamWorkQueue(ctx context.Context, js jetstream.JetStream) jetstream.Stream {
	st, err := eventJetstream.CreateQueueStream(ctx, js)
	if err != nil {
		log.Fatalln("failed to create stream", err)
	}

	return st
}

// newTracer installs the exporter configured under otel.*. The returned func must run on shutdown.
func newTracer(ctx context.Context, cfg *viper.Viper) func(context.Context) error {
	shutdown, err := otel.InitTracer(ctx, otel.Config{
		Enabled:     cfg.GetBool("otel.enabled"),
		Endpoint:    cfg.GetString("otel.endpoint"),
		ServiceName: cfg.GetString("otel.service_name"),
		SampleRatio: cfg.GetFloat64("otel.sample_ratio"),
	})
	if err != nil {
		log.Fatalln("failed to init tracer", err)
	}

	return shutdown
}

func newGateway(cfg *viper.Viper) *gateway.Client {
	var gwCfg gateway.Config
	if err := cfg.UnmarshalKey("gateway", &gwCfg); err != nil {
		log.Fatalln("invalid gateway config", err)
	}

	return gateway.NewClient(gwCfg)
}

func newVerifier(cfg *viper.Viper) auth.Verifier {
	secret := cfg.GetString("auth.jwt_secret")
	if secret == "" {
		log.Fatalln("auth.jwt_secret is required")
	}

	return auth.Verifier{
		Secret: []byte(secret),
		Issuer: cfg.GetString("auth.issuer"),
	}
}
