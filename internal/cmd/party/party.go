// Package party parses party command flags and composes the coordinator app.
package party

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/quillback/liftline/internal/platform/cmd"
	"github.com/quillback/liftline/internal/services/party/app"
)

// Config holds party command configuration.
type Config struct {
	AuditDBPath              string        `env:"LIFTLINE_PARTY_AUDIT_DB_PATH"     envDefault:"party-audit.db"`
	NATSURL                  string        `env:"LIFTLINE_NATS_URL"`
	GatewaySpec              string        `env:"LIFTLINE_PARTY_GATEWAYS"          envDefault:"gw-1:6"`
	GroupCapacity            int           `env:"LIFTLINE_PARTY_GROUP_CAPACITY"    envDefault:"4"`
	HostZone                 int           `env:"LIFTLINE_PARTY_HOST_ZONE"         envDefault:"0"`
	VisibleZones             []int         `env:"LIFTLINE_PARTY_VISIBLE_ZONES"     envSeparator:","`
	DispatchDelay            time.Duration `env:"LIFTLINE_PARTY_DISPATCH_DELAY"    envDefault:"3s"`
	CancelDispatchOnDissolve bool          `env:"LIFTLINE_PARTY_CANCEL_STALE_DISPATCH" envDefault:"true"`
	PresencePingTimeout      time.Duration `env:"LIFTLINE_PARTY_PRESENCE_TIMEOUT"  envDefault:"250ms"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.AuditDBPath, "audit-db-path", cfg.AuditDBPath, "SQLite audit database path (empty disables persistence)")
	fs.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS broker URL (empty runs in-process)")
	fs.StringVar(&cfg.GatewaySpec, "gateways", cfg.GatewaySpec, "managed gateways as id:seats,... in destination order")
	fs.IntVar(&cfg.GroupCapacity, "group-capacity", cfg.GroupCapacity, "confirmed-member limit per group")
	fs.IntVar(&cfg.HostZone, "host-zone", cfg.HostZone, "zone the party host lives in")
	fs.DurationVar(&cfg.DispatchDelay, "dispatch-delay", cfg.DispatchDelay, "pause between go confirmation and dispatch")
	fs.BoolVar(&cfg.CancelDispatchOnDissolve, "cancel-stale-dispatch", cfg.CancelDispatchOnDissolve, "cancel scheduled dispatches when their group dissolves")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the party app and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceParty, func(context.Context) error {
		a, err := app.New(app.Config{
			AuditDBPath:              cfg.AuditDBPath,
			NATSURL:                  cfg.NATSURL,
			GatewaySpec:              cfg.GatewaySpec,
			GroupCapacity:            cfg.GroupCapacity,
			HostZone:                 cfg.HostZone,
			VisibleZones:             cfg.VisibleZones,
			DispatchDelay:            cfg.DispatchDelay,
			CancelDispatchOnDissolve: cfg.CancelDispatchOnDissolve,
			PresencePingTimeout:      cfg.PresencePingTimeout,
		})
		if err != nil {
			return fmt.Errorf("assemble party app: %w", err)
		}
		if err := a.Run(ctx); err != nil {
			return fmt.Errorf("serve party: %w", err)
		}
		return nil
	})
}
