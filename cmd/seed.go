package cmd

import (
	"fmt"
	"log"

	"github.com/Rogerio-auto/campaign-gateway/internal/config"
	"github.com/Rogerio-auto/campaign-gateway/internal/db"
	"github.com/Rogerio-auto/campaign-gateway/internal/util"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo accounts, inboxes, and campaigns",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo data...")

		if err := seedAccounts(sqlDB); err != nil {
			return err
		}
		if err := seedInboxes(sqlDB); err != nil {
			return err
		}
		if err := seedTemplates(sqlDB); err != nil {
			return err
		}
		if err := seedCampaigns(sqlDB); err != nil {
			return err
		}
		if err := seedRecipientsAndOptIns(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seedAccounts inserts deterministic demo tenants (idempotent on api_key).
func seedAccounts(dbx *sqlx.DB) error {
	const q = `
INSERT INTO accounts (name, api_key, status, rate_limit_rps)
VALUES
    ('Acme Outreach',   '11111111111111111111111111111111', 'active',    20),
    ('Foobar Commerce', '22222222222222222222222222222222', 'active',    50),
    ('Suspended Inc',   '33333333333333333333333333333333', 'suspended', NULL)
ON DUPLICATE KEY UPDATE
    name = VALUES(name), status = VALUES(status), rate_limit_rps = VALUES(rate_limit_rps)`
	_, err := dbx.Exec(q)
	if err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}
	return nil
}

// seedInboxes gives Acme two numbers with diverging health, Foobar one.
func seedInboxes(dbx *sqlx.DB) error {
	const q = `
INSERT INTO inboxes
    (id, account_id, name, phone_number_id, access_token, quality_rating, messaging_tier, tier_limit, health_updated_at)
VALUES
    (1, 1, 'Acme Main',    '100000000000001', 'demo-token-1', 'green',  'tier_1k',      1000, NOW()),
    (2, 1, 'Acme Backup',  '100000000000002', 'demo-token-2', 'yellow', 'tier_250',     250,  NOW()),
    (3, 2, 'Foobar Sales', '100000000000003', 'demo-token-3', 'unknown','tier_unknown', 0,    NULL)
ON DUPLICATE KEY UPDATE
    name = VALUES(name), quality_rating = VALUES(quality_rating),
    messaging_tier = VALUES(messaging_tier), tier_limit = VALUES(tier_limit)`
	_, err := dbx.Exec(q)
	if err != nil {
		return fmt.Errorf("seed inboxes: %w", err)
	}
	return nil
}

func seedTemplates(dbx *sqlx.DB) error {
	const q = `
INSERT INTO message_templates (id, inbox_id, name, category, kind, approval_status)
VALUES
    (1, 1, 'spring_sale',     'marketing', NULL,            'approved'),
    (2, 1, 'order_update',    'utility',   NULL,            'approved'),
    (3, 2, 'legacy_promo',    '',          'marketing',     'approved'),
    (4, 3, 'welcome_pending', 'marketing', NULL,            'pending')
ON DUPLICATE KEY UPDATE
    name = VALUES(name), category = VALUES(category),
    kind = VALUES(kind), approval_status = VALUES(approval_status)`
	_, err := dbx.Exec(q)
	if err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	return nil
}

func seedCampaigns(dbx *sqlx.DB) error {
	const q = `
INSERT INTO campaigns (id, account_id, inbox_id, name, status, daily_limit)
VALUES
    (1, 1, 1, 'Spring Sale Blast',    'draft',  500),
    (2, 1, 1, 'Order Notifications',  'active', 0),
    (3, 1, 2, 'Legacy Promo Rerun',   'draft',  100),
    (4, 2, 3, 'Foobar Welcome Drip',  'draft',  50)
ON DUPLICATE KEY UPDATE
    name = VALUES(name), daily_limit = VALUES(daily_limit)`
	if _, err := dbx.Exec(q); err != nil {
		return fmt.Errorf("seed campaigns: %w", err)
	}

	const steps = `
INSERT INTO campaign_steps (campaign_id, position, template_id)
VALUES
    (1, 0, 1),
    (2, 0, 2),
    (3, 0, 3),
    (4, 0, 4)
ON DUPLICATE KEY UPDATE template_id = VALUES(template_id)`
	if _, err := dbx.Exec(steps); err != nil {
		return fmt.Errorf("seed campaign steps: %w", err)
	}
	return nil
}

// seedRecipientsAndOptIns loads a small audience where only part of it has
// recorded consent, so the marketing campaigns exercise the opt-in check.
func seedRecipientsAndOptIns(dbx *sqlx.DB) error {
	phones := []string{
		"+15550000001", "+1 (555) 000-0002", "0015550000003",
		"15550000004", "+15550000005",
	}

	for i, raw := range phones {
		phone := util.NormalizePhone(raw)
		for _, campaignID := range []int{1, 2} {
			if _, err := dbx.Exec(`
INSERT IGNORE INTO campaign_recipients (campaign_id, phone) VALUES (?, ?)`,
				campaignID, phone); err != nil {
				return fmt.Errorf("seed recipients: %w", err)
			}
		}
		// first three recipients opted in, the rest did not
		if i < 3 {
			if _, err := dbx.Exec(`
INSERT IGNORE INTO opt_ins (account_id, phone, source) VALUES (1, ?, 'signup_form')`,
				phone); err != nil {
				return fmt.Errorf("seed opt-ins: %w", err)
			}
		}
	}
	return nil
}
