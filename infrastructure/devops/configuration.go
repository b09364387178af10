package devops

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type DBEntry struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type DBConfig struct {
	Databases []DBEntry `yaml:"databases"`
}

var (
	once    sync.Once
	dbList  []DBEntry
	loadErr error
)

func LoadDBConfig(ctx context.Context) ([]DBEntry, error) {
	once.Do(func() {
		paramName := "databases"

		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			loadErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(cfg)

		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(paramName),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			loadErr = fmt.Errorf("get parameter: %w", err)
			return
		}

		var parsed []DBEntry
		if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
			loadErr = fmt.Errorf("unmarshal yaml: %w", err)
			return
		}

		dbList = parsed
	})

	return dbList, loadErr
}

// ThresholdsYAML mirrors core.IssueThresholds for the SSM parameter payload.
type ThresholdsYAML struct {
	HoursWarnPct       *float64 `yaml:"hoursWarnPct"`
	HoursCriticalPct   *float64 `yaml:"hoursCriticalPct"`
	UtilWarnPct        *float64 `yaml:"utilWarnPct"`
	UtilCriticalPct    *float64 `yaml:"utilCriticalPct"`
	AttentionRiskDays  *int     `yaml:"attentionRiskDays"`
	GMVariancePct      *float64 `yaml:"gmVariancePct"`
	GMMaterialityFloor *float64 `yaml:"gmMaterialityFloor"`
}

var (
	thOnce   sync.Once
	thParsed *ThresholdsYAML
	thErr    error
)

// LoadThresholds fetches the issue-threshold overrides from the
// "attribution-thresholds" SSM parameter. Missing parameter or fields mean
// "use the engine defaults". The ATTENTION_RISK_DAYS env var wins over both
// for local runs.
func LoadThresholds(ctx context.Context) (*ThresholdsYAML, error) {
	thOnce.Do(func() {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			thErr = fmt.Errorf("load aws config: %w", err)
			return
		}

		client := ssm.NewFromConfig(cfg)
		out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
			Name: aws.String("attribution-thresholds"),
		})
		if err != nil {
			// No parameter configured: defaults apply.
			thParsed = &ThresholdsYAML{}
			return
		}

		var parsed ThresholdsYAML
		if err := yaml.Unmarshal([]byte(*out.Parameter.Value), &parsed); err != nil {
			thErr = fmt.Errorf("unmarshal thresholds yaml: %w", err)
			return
		}
		thParsed = &parsed
	})

	if thErr != nil {
		return nil, thErr
	}

	overridden := *thParsed
	if v := os.Getenv("ATTENTION_RISK_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			overridden.AttentionRiskDays = &days
		}
	}
	return &overridden, nil
}
