package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dd0wney/cluso-sealstore/pkg/config"
	"github.com/dd0wney/cluso-sealstore/pkg/encryptedstore"
	"github.com/dd0wney/cluso-sealstore/pkg/encryption"
	"github.com/dd0wney/cluso-sealstore/pkg/logging"
	"github.com/dd0wney/cluso-sealstore/pkg/metrics"
	"github.com/dd0wney/cluso-sealstore/pkg/pgstore"
	"github.com/dd0wney/cluso-sealstore/pkg/store"
)

func main() {
	configPath := flag.String("config", "sealstore.yaml", "path to configuration file")
	rotate := flag.Bool("rotate", false, "rotate to a freshly generated key after the demo writes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.Logging.Level))
	registry := metrics.NewRegistry(prometheus.DefaultRegisterer)

	ctx := context.Background()

	var inner store.FullStore
	switch cfg.Store.Backend {
	case "postgres":
		pg, err := pgstore.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer pg.Close()
		inner = pg
	default:
		inner = store.NewMemoryStore()
	}

	key, err := cfg.Key()
	if err != nil {
		log.Fatalf("Failed to resolve key: %v", err)
	}

	es, err := encryptedstore.New(ctx, inner, key, &encryptedstore.Options{
		Codec:       cfg.Codec(),
		Sequencer:   cfg.Sequencer(),
		Logger:      logger,
		Metrics:     registry,
		ValidateKey: cfg.Crypto.ValidateKey,
	})
	if err != nil {
		log.Fatalf("Failed to create encrypted store: %v", err)
	}

	if err := runDemo(ctx, es); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}

	if *rotate {
		newKey, err := encryption.GenerateKey()
		if err != nil {
			log.Fatalf("Failed to generate rotation key: %v", err)
		}
		rotated, err := es.ChangeKey(ctx, newKey)
		if err != nil {
			log.Fatalf("Key rotation failed (store may be in mixed-key state): %v", err)
		}
		es = rotated

		row, err := es.FetchData(ctx, "accounts", store.IntKey(1))
		if err != nil || row == nil {
			log.Fatalf("Read-back after rotation failed: %v", err)
		}
		fmt.Println("Rotation complete; data readable under new key")
	}
}

// runDemo inserts one row through the encrypted layer and reads it back
func runDemo(ctx context.Context, es *encryptedstore.EncryptedStore) error {
	schema := &store.Schema{
		TableName: "accounts",
		Columns: []store.ColumnDef{
			{Name: "id", Type: store.TypeInt},
			{Name: "holder", Type: store.TypeText},
			{Name: "balance", Type: store.TypeFloat},
		},
	}
	if existing, err := es.FetchSchema(ctx, schema.TableName); err != nil {
		return err
	} else if existing == nil {
		if err := es.InsertSchema(ctx, schema); err != nil {
			return err
		}
	}

	row := store.VecRow(
		store.IntValue(1),
		store.TextValue("alice"),
		store.FloatValue(1250.75),
	)
	if err := es.InsertData(ctx, "accounts", []store.KeyedRow{
		{Key: store.IntKey(1), Row: row},
	}); err != nil {
		return err
	}

	got, err := es.FetchData(ctx, "accounts", store.IntKey(1))
	if err != nil {
		return err
	}
	if got == nil {
		return fmt.Errorf("row not found after insert")
	}

	holder, _ := got.Values[1].AsText()
	balance, _ := got.Values[2].AsFloat()
	fmt.Printf("Read back: holder=%s balance=%.2f\n", holder, balance)
	return nil
}
