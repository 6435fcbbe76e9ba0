package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/maintainly/api-go/config"
	"github.com/maintainly/api-go/routes"
	"github.com/maintainly/api-go/scheduler"
	"github.com/maintainly/api-go/services"
)

func main() {
	// Set up logging to stdout
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Initialize database
	db := config.InitDB()

	// Single-node deployments run on the in-process bus; REDIS_URL switches
	// to pub/sub so all API instances see every change event.
	var bus services.Bus
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		bus = services.NewRedisBus(addr)
		log.Printf("Using Redis event bus at %s", addr)
	} else {
		bus = services.NewLocalBus()
	}

	workflow := services.NewWorkflow(db, bus)

	fanIn := services.NewFanIn(bus)
	fanIn.Start()
	defer fanIn.Stop()

	sweeper := scheduler.Start(db, bus)
	defer sweeper.Stop()

	// Create a new Gin router
	r := gin.Default()
	r.Use(cors.Default())
	r.Use(gin.LoggerWithWriter(os.Stdout))

	// Initialize routes
	routes.SetupRoutes(r, db, workflow, fanIn)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s", port)
	r.Run(":" + port)
}
