package identity

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
	"github.com/olatide/bookingscheduler/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/olatide/bookingscheduler/backend/pkg/errors"
	"github.com/olatide/bookingscheduler/backend/pkg/retry"
)

// Resolver implements IdentityResolver against the session store. The caller
// kind and tenant are fixed at session establishment; the per-request work is
// a lookup plus a profile fetch.
//
// A session can outrun its subject's profile row when account provisioning
// is still in flight. The profile fetch therefore runs on a bounded backoff
// budget with a single self-healing provisioning call after the first miss.
type Resolver struct {
	client   *postgres.Client
	db       *goqu.Database
	retryCfg retry.Config
}

// NewResolver creates a session-store backed identity resolver
func NewResolver(client *postgres.Client) providers.IdentityResolver {
	return &Resolver{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		retryCfg: retry.Config{
			MaxAttempts:     4,
			InitialDelay:    50 * time.Millisecond,
			MaxDelay:        500 * time.Millisecond,
			BackoffFactor:   2.0,
			MaxTotalTimeout: 3 * time.Second,
		},
	}
}

type sessionRow struct {
	subjectID string
	kind      entities.IdentityKind
	tenantID  string
	elevated  bool
}

// Resolve looks up the session token and returns the authenticated identity.
func (r *Resolver) Resolve(ctx context.Context, sessionToken string) (entities.Identity, error) {
	if sessionToken == "" {
		return entities.Identity{}, apperrors.NewUnauthorizedError("missing session token")
	}

	session, err := r.getSession(ctx, sessionToken)
	if err != nil {
		return entities.Identity{}, err
	}

	profile, err := retry.DoWithRepair(ctx, r.retryCfg,
		func(ctx context.Context) (sessionRow, error) {
			return r.getProfile(ctx, session)
		},
		func(ctx context.Context) error {
			return r.provisionProfile(ctx, session)
		},
	)
	if err != nil {
		return entities.Identity{}, apperrors.NewUnauthorizedError("subject profile unavailable")
	}

	if profile.kind == entities.IdentityKindStaff {
		return entities.StaffIdentity(profile.subjectID, profile.tenantID, profile.elevated), nil
	}
	return entities.ClientIdentity(profile.subjectID, profile.tenantID), nil
}

func (r *Resolver) getSession(ctx context.Context, token string) (sessionRow, error) {
	query, args, err := r.db.Select("subject_id", "kind", "tenant_id", "elevated").
		From("sessions").
		Where(
			goqu.Ex{"token": token},
			goqu.C("expires_at").Gt(time.Now()),
		).
		ToSQL()
	if err != nil {
		return sessionRow{}, apperrors.NewInternalError("failed to build query", err)
	}

	var session sessionRow
	err = r.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&session.subjectID,
		&session.kind,
		&session.tenantID,
		&session.elevated,
	)
	if err == sql.ErrNoRows {
		return sessionRow{}, apperrors.NewUnauthorizedError("invalid or expired session")
	}
	if err != nil {
		return sessionRow{}, apperrors.NewInternalError("failed to load session", err)
	}

	return session, nil
}

// getProfile confirms the subject's profile row exists. Elevated access for
// staff comes from the profile, not the session, so a revocation takes
// effect on the next request.
func (r *Resolver) getProfile(ctx context.Context, session sessionRow) (sessionRow, error) {
	profile := session
	profile.elevated = false

	if session.kind == entities.IdentityKindStaff {
		query, args, err := r.db.Select("elevated").
			From("staff_profiles").
			Where(goqu.Ex{"subject_id": session.subjectID}).
			ToSQL()
		if err != nil {
			return sessionRow{}, apperrors.NewInternalError("failed to build query", err)
		}

		var elevated sql.NullBool
		err = r.client.DB().QueryRowContext(ctx, query, args...).Scan(&elevated)
		if err == sql.ErrNoRows {
			return sessionRow{}, retry.ErrNotReady
		}
		if err != nil {
			return sessionRow{}, apperrors.NewInternalError("failed to load profile", err)
		}
		profile.elevated = elevated.Valid && elevated.Bool
		return profile, nil
	}

	query, args, err := r.db.Select("subject_id").
		From("client_profiles").
		Where(goqu.Ex{"subject_id": session.subjectID}).
		ToSQL()
	if err != nil {
		return sessionRow{}, apperrors.NewInternalError("failed to build query", err)
	}

	var subjectID string
	err = r.client.DB().QueryRowContext(ctx, query, args...).Scan(&subjectID)
	if err == sql.ErrNoRows {
		return sessionRow{}, retry.ErrNotReady
	}
	if err != nil {
		return sessionRow{}, apperrors.NewInternalError("failed to load profile", err)
	}
	return profile, nil
}

// provisionProfile creates a default profile row for a freshly established
// account. Elevated access is never granted this way.
func (r *Resolver) provisionProfile(ctx context.Context, session sessionRow) error {
	table := "client_profiles"
	record := goqu.Record{
		"subject_id": session.subjectID,
		"tenant_id":  session.tenantID,
		"created_at": time.Now(),
	}
	if session.kind == entities.IdentityKindStaff {
		table = "staff_profiles"
		record["elevated"] = false
	}

	query, args, err := r.db.Insert(table).
		Rows(record).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := r.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to provision profile", err)
	}

	return nil
}
