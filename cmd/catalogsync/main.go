package main

import (
	"context"
	"log/slog"
	"os"

	"catalogsync/cmd/catalogsync/commands"
	"catalogsync/lib/serviceutil"
	"catalogsync/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "catalogsync")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to set up telemetry", err)
	}
	if err == nil {
		defer func() {
			if err := tel.Shutdown(context.Background()); err != nil {
				slog.Error("failed to shut down telemetry", "err", err)
			}
		}()
	}

	commands.ExecuteContext(ctx)
}
