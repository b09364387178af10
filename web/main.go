package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"cfoworx.com/portal/attribution/core"
	"cfoworx.com/portal/attribution/web/handlers/report"
	portal "cfoworx.com/portal/core"
	"cfoworx.com/portal/infrastructure/devops"
	"cfoworx.com/portal/web/middlewares"
	"github.com/gin-gonic/gin"
)

func main() {
	r := gin.Default()
	dsn, err := resolveDSN(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	dm, err := portal.New(dsn, 10)

	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	base64Secret := os.Getenv("PORTAL_SIGNING_SECRET")
	jwtSecret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		log.Fatal("Failed to decode JWT secret:", err)
	}

	thresholds := loadThresholds()

	protected := r.Group("/api/portal/v1.0")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		protected.GET("/hello", func(c *gin.Context) {
			claims, _ := c.Get("claims")
			c.JSON(200, gin.H{
				"message": "Hello!",
				"claims":  claims,
			})
		})
		report.Register(protected, dm, thresholds)
	}

	r.NoRoute(func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
			return
		}
	})

	r.Run("0.0.0.0:8090")
}

// resolveDSN prefers the DSN env var for local runs and falls back to the
// first entry of the SSM "databases" parameter in deployed environments.
// The pool DSN carries no schema; GetDB issues USE per request.
func resolveDSN(ctx context.Context) (string, error) {
	if dsn := os.Getenv("DSN"); dsn != "" {
		return dsn, nil
	}
	entries, err := devops.LoadDBConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve dsn: %w", err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("resolve dsn: no DSN env var and no database entries configured")
	}
	e := entries[0]
	return fmt.Sprintf("%s:%s@tcp(%s)/?parseTime=true", e.Username, e.Password, e.Host), nil
}

// loadThresholds merges SSM overrides over the engine defaults. A missing or
// unreachable parameter leaves the defaults in place.
func loadThresholds() core.IssueThresholds {
	thresholds := core.DefaultThresholds()

	overrides, err := devops.LoadThresholds(context.Background())
	if err != nil || overrides == nil {
		return thresholds
	}
	if overrides.HoursWarnPct != nil {
		thresholds.HoursWarnPct = *overrides.HoursWarnPct
	}
	if overrides.HoursCriticalPct != nil {
		thresholds.HoursCriticalPct = *overrides.HoursCriticalPct
	}
	if overrides.UtilWarnPct != nil {
		thresholds.UtilWarnPct = *overrides.UtilWarnPct
	}
	if overrides.UtilCriticalPct != nil {
		thresholds.UtilCriticalPct = *overrides.UtilCriticalPct
	}
	if overrides.AttentionRiskDays != nil {
		thresholds.AttentionRiskDays = *overrides.AttentionRiskDays
	}
	if overrides.GMVariancePct != nil {
		thresholds.GMVariancePct = *overrides.GMVariancePct
	}
	if overrides.GMMaterialityFloor != nil {
		thresholds.GMMaterialityFloor = *overrides.GMMaterialityFloor
	}
	return thresholds
}
