package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-tenant-auth/internal/utils"
	"github.com/jrsteele09/go-tenant-auth/storage/postgres"
	"github.com/jrsteele09/go-tenant-auth/tenants"
	"github.com/jrsteele09/go-tenant-auth/users"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// provisioningStores opens Postgres for the provisioning commands, which are
// meaningless against in-memory storage.
func (c *cli) provisioningStores(ctx context.Context) (*stores, error) {
	if c.cfg.GetDatabaseURL() == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return openStores(ctx, c.cfg, false)
}

func (c *cli) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.GetDatabaseURL() == "" {
				return errors.New("DATABASE_URL is required")
			}
			pool, err := postgres.Open(cmd.Context(), c.cfg.GetDatabaseURL())
			if err != nil {
				return err
			}
			defer pool.Close()
			return postgres.Migrate(cmd.Context(), pool)
		},
	}
}

func (c *cli) newTenantCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Tenant provisioning",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var contactEmail string
	add := &cobra.Command{
		Use:   "add <subdomain> <name>",
		Short: "Create or rename a tenant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.provisioningStores(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			subdomain := strings.ToLower(strings.TrimSpace(args[0]))
			if tenants.IsPseudoSubdomain(subdomain) {
				return errors.Errorf("%q is reserved", subdomain)
			}
			t, err := st.tenants.GetBySubdomain(cmd.Context(), subdomain)
			if err != nil {
				return err
			}
			if t == nil {
				t = &tenants.Tenant{Subdomain: subdomain}
			}
			t.Name = args[1]
			if contactEmail != "" {
				t.ContactEmail = contactEmail
			}
			if err := st.tenants.Upsert(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tenant %s (%s)\n", t.Subdomain, t.ID)
			return nil
		},
	}
	add.Flags().StringVar(&contactEmail, "contact", "", "Contact email for the tenant")

	cmd.AddCommand(add)
	return cmd
}

func (c *cli) newAccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account provisioning",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(c.newAccountAddCommand())
	cmd.AddCommand(c.newAccountLinkCommand())
	return cmd
}

func (c *cli) newAccountAddCommand() *cobra.Command {
	var (
		name      string
		phone     string
		superuser bool
		tier      string
	)

	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Create or update an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if !utils.IsEmail(email) {
				return errors.Errorf("%q is not a valid email", email)
			}
			role := users.SuperuserRole(strings.ToUpper(tier))
			if superuser && !role.Valid() {
				return errors.Errorf("unknown superuser tier %q", tier)
			}

			st, err := c.provisioningStores(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			a, err := st.users.GetByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			if a == nil {
				a = &users.Account{Email: email}
			}
			if name != "" {
				a.Name = name
			}
			if phone != "" {
				a.Phone = utils.Ptr(phone)
			}
			a.IsSuperuser = superuser
			a.SuperuserRole = ""
			if superuser {
				a.SuperuserRole = role
			}
			if err := st.users.Upsert(cmd.Context(), a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account %s (%s)\n", a.Email, a.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	cmd.Flags().BoolVar(&superuser, "superuser", false, "Grant platform superuser access")
	cmd.Flags().StringVar(&tier, "tier", string(users.SuperuserStaff), "Superuser tier (ADMIN or STAFF)")
	return cmd
}

func (c *cli) newAccountLinkCommand() *cobra.Command {
	var (
		role        string
		campaignIDs []string
		inactive    bool
	)

	cmd := &cobra.Command{
		Use:   "link <email> <subdomain>",
		Short: "Bind an account to a tenant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := users.Role(strings.ToUpper(role))
			if !r.Valid() {
				return errors.Errorf("unknown role %q", role)
			}
			if r == users.RoleVisitor && len(campaignIDs) == 0 {
				return errors.New("a VISITOR needs at least one --campaign")
			}

			st, err := c.provisioningStores(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			a, err := st.users.GetByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a == nil {
				return errors.Errorf("no account for %s", args[0])
			}
			t, err := st.tenants.GetBySubdomain(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if t == nil {
				return errors.Errorf("no tenant %s", args[1])
			}

			b := &users.TenantBinding{
				AccountID: a.ID,
				TenantID:  t.ID,
				Role:      r,
				Status:    users.StatusActive,
			}
			if r == users.RoleVisitor {
				b.CampaignIDs = campaignIDs
			}
			if inactive {
				b.Status = users.StatusInactive
			}
			if err := st.users.CreateBinding(cmd.Context(), b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s of %s\n", a.Email, b.Role, t.Subdomain)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(users.RoleManager), "Tenant role (MANAGER, ANALYST, OPERATION or VISITOR)")
	cmd.Flags().StringSliceVar(&campaignIDs, "campaign", nil, "Campaign visible to a VISITOR; repeatable")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Create the binding as inactive")
	return cmd
}
