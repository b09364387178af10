package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"gorm.io/gorm"

	"cfoworx.com/portal/attribution/core"
	"cfoworx.com/portal/attribution/store"
	portal "cfoworx.com/portal/core"
	"cfoworx.com/portal/infrastructure/communication"
	"cfoworx.com/portal/lambdas/weeklydigest/helper"
	"cfoworx.com/portal/utils"
)

// Scheduled weekly: run the issue look-back fan-out for every firm schema on
// the pool and push the combined digest to Slack and email.
func handler(ctx context.Context) error {
	dsn := os.Getenv("DSN")
	dm, err := portal.New(dsn, 4)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	defer dm.Close()

	schemas, err := dm.GetAllDatabases(ctx)
	if err != nil {
		return fmt.Errorf("list schemas: %w", err)
	}

	weeks := 4
	if v := os.Getenv("LOOKBACK_WEEKS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			weeks = parsed
		}
	}

	var body strings.Builder
	totalIssues := 0
	anyCritical := false
	for _, schema := range schemas {
		var report *core.WeeklyIssuesReport
		err := dm.Exec(ctx, schema, func(db *gorm.DB) error {
			var runErr error
			report, runErr = core.NewEngine(store.New(db)).WeeklyIssues(ctx, weeks)
			return runErr
		})
		if err != nil {
			// One broken schema must not sink the rest of the digest.
			log.Printf("weekly issues for %s: %v", schema, err)
			continue
		}
		fmt.Fprintf(&body, "=== %s ===\n%s\n", schema, helper.FormatDigest(report))
		totalIssues += len(report.Issues)
		if utils.Find(report.Issues, func(i core.WeeklyIssue) bool { return i.Severity == core.SeverityCritical }) != nil {
			anyCritical = true
		}
	}
	if body.Len() == 0 {
		return fmt.Errorf("weekly issues: no schema produced a digest")
	}
	fmt.Println(body.String())

	slack := communication.ConnectSlack()
	if err := slack.Info(body.String()); err != nil {
		log.Printf("slack post failed: %v", err)
	}

	from := os.Getenv("DIGEST_FROM")
	to := strings.Split(os.Getenv("DIGEST_TO"), ",")
	if from != "" && len(to) > 0 && to[0] != "" {
		subject := fmt.Sprintf("Weekly issues digest (%d issues)", totalIssues)
		if anyCritical {
			subject = "[CRITICAL] " + subject
		}
		if err := helper.SendDigestEmail(ctx, from, to, subject, body.String()); err != nil {
			log.Printf("digest email failed: %v", err)
		}
	}

	return nil
}

func main() {
	lambda.Start(handler)
}
