package mongo

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"
)

var testStorage *Storage

func TestMain(m *testing.M) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		log.Printf("mongo repository tests skipped: MONGO_TEST_URI is not set")
		os.Exit(0)
	}

	ctx := context.Background()
	dbName := fmt.Sprintf("learnify_test_%d", time.Now().UnixNano())
	var err error
	testStorage, err = NewMongoStorage(ctx, uri, dbName, 5*time.Second)
	if err != nil {
		log.Printf("mongo repository tests skipped: %v", err)
		os.Exit(0)
	}
	if err := testStorage.EnsureIndexes(ctx); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	code := m.Run()

	_ = testStorage.DB.Drop(ctx)
	_ = testStorage.Close(ctx)
	os.Exit(code)
}
