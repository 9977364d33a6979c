package main

import (
	"context"
	"fmt"

	"piclips/video-api/app"
	"piclips/video-api/config"
	"piclips/video-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	err := config.Setup()
	if err != nil {
		panic(err)
	}

	if err := app.MakeLogger(); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	if !config.Dev() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	d, err := app.NewDeps(ctx)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}

	m := service.NewMaintenance(d.DB, d.Store)

	// One-off maintenance runs exit once they're done
	if *config.Recount || *config.CleanupS3 {
		if *config.Recount {
			n, err := service.Recount(ctx, d.DB)
			if err != nil {
				zap.L().Fatal("Recount failed", zap.Error(err))
			}
			zap.L().Info("Recount finished", zap.Int64("users", n))
		}

		if *config.CleanupS3 {
			n, err := service.SweepOrphans(ctx, d.DB, d.Store)
			if err != nil {
				zap.L().Fatal("Object cleanup failed", zap.Error(err))
			}
			zap.L().Info("Object cleanup finished", zap.Int("removed", n))
		}

		return
	}

	if err := m.Start(viper.GetString("maintenance.schedule")); err != nil {
		zap.L().Fatal("Failed to schedule maintenance", zap.Error(err))
	}
	defer m.Stop()

	router := app.NewRouter(d)
	addr := fmt.Sprintf(":%d", viper.GetInt("host.port"))

	zap.L().Info("Server starting", zap.String("addr", addr))

	if viper.GetBool("host.ssl.enabled") {
		err = router.RunTLS(addr, viper.GetString("host.ssl.certificate_path"), viper.GetString("host.ssl.certificate_key_path"))
	} else {
		err = router.Run(addr)
	}
	if err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}
