// scripts/migrate.go
package scripts

import (
	"log"

	"github.com/medhire/medhire-backend/internal/config"
	"github.com/medhire/medhire-backend/internal/db"
)

func Migrate() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	dbConn, err := db.Connect(cfg.DBURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.Migrate(dbConn); err != nil {
		log.Fatal(err)
	}

	log.Println("migrations complete")
}
