package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/KBoadi/Ripple-server/cmd/api"
	"github.com/KBoadi/Ripple-server/cmd/models"
	"github.com/KBoadi/Ripple-server/cmd/utils"
	"github.com/KBoadi/Ripple-server/db"
	"github.com/KBoadi/Ripple-server/pkg/ratelimit"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "clear-db":
			runDatabaseClear()
			return
		default:
			logrus.Fatalf("Unknown command: %s", os.Args[1])
		}
	}

	startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		logrus.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB)
	logrus.Info("Connected to the database for migrations")

	if err := performMigrations(DB); err != nil {
		logrus.Fatalf("Migration error: %v", err)
	}
	logrus.Info("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {
	migrations := map[interface{}]string{
		&models.User{}:    "User",
		&models.Post{}:    "Post",
		&models.Comment{}: "Comment",
		&models.Reply{}:   "Reply",
		&models.Like{}:    "Like",
	}

	logrus.Info("Starting database migrations...")
	for model, name := range migrations {
		logrus.Infof("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
	}

	if err := os.MkdirAll(utils.ImagePath, 0755); err != nil {
		return fmt.Errorf("could not create upload directory: %w", err)
	}

	logrus.Info("All migrations and directory setup completed successfully")
	return nil
}

func startServer() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		logrus.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB)
	logrus.Info("Connected to the database")

	limiter := ratelimit.NewFixedWindow()
	defer limiter.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB, limiter)

	go func() {
		if err := server.Run(); err != nil {
			logrus.Fatalf("Server error: %v", err)
		}
	}()
	logrus.Infof("Server running on port %s", port)

	<-quit
	logrus.Info("Shutting down server...")
}

func runDatabaseClear() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		logrus.Fatalf("Database initialization error: %v", err)
	}
	defer closeDB(DB)

	logrus.Info("Preparing to clear database...")

	var confirmation string
	fmt.Print("Are you sure you want to clear the database? (yes/no): ")
	fmt.Scanln(&confirmation)

	if confirmation != "yes" {
		logrus.Info("Database clearing cancelled.")
		return
	}

	tables := []interface{}{
		&models.Like{},
		&models.Reply{},
		&models.Comment{},
		&models.Post{},
		&models.User{},
	}

	logrus.Info("Dropping tables...")
	for _, table := range tables {
		if err := DB.Migrator().DropTable(table); err != nil {
			logrus.Warnf("Warning dropping table %T: %v", table, err)
		} else {
			logrus.Infof("Table %T dropped", table)
		}
	}

	logrus.Info("Database cleared successfully")
}

func closeDB(DB *gorm.DB) {
	sqlDB, _ := DB.DB()
	sqlDB.Close()
	logrus.Info("Database connection closed")
}
