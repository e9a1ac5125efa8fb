package main

import (
	"context"

	"github.com/pulsifi-app/pulsifi-backend/events"
	"github.com/pulsifi-app/pulsifi-backend/privilege"
	"github.com/pulsifi-app/pulsifi-backend/server"
	"github.com/pulsifi-app/pulsifi-backend/utils"
	"github.com/pulsifi-app/pulsifi-backend/utils/dotenv"
	. "github.com/pulsifi-app/pulsifi-backend/utils/flag"
	. "github.com/pulsifi-app/pulsifi-backend/utils/log"
)

func cleanup() {
	LogV2.Info("pulsifi server shutdown")
}

func main() {
	ParseFlags()
	defer cleanup()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		panic("failed to connect to database")
	}
	if err := utils.DBSetupAndMigration(db); err != nil {
		panic(err)
	}
	if err := privilege.EnsureDefaultGroups(db); err != nil {
		panic(err)
	}

	store := utils.NewEngagementStatusStore()

	bus := events.NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := events.StartAuditLogger(ctx, bus); err != nil {
		panic(err)
	}

	router := server.NewRouter(db, store, bus)

	LogV2.Info("pulsifi server starts up")
	router.Run(*ServerAddr)
}
