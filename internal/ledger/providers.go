package ledger

import (
	"context"
	"fmt"

	"supplierledger/internal/validation"
)

// AddProvider validates in, creates the provider on the Backend API and
// appends the server's record to the local list.
func (s *Store) AddProvider(ctx context.Context, in ProviderInput) Result[Provider] {
	if fields := validation.Struct(in); fields != nil {
		return invalid[Provider](ErrInvalidInput, fields)
	}

	created, err := s.api.CreateProvider(ctx, in)
	if err != nil {
		s.log.Warn().Err(err).Str("document", in.Document).Msg("create provider failed")
		return backendFailure[Provider]("create provider", err)
	}

	s.mu.Lock()
	s.upsertProvider(created)
	s.mu.Unlock()

	s.log.Info().Uint("provider_id", created.ID).Msg("provider created")
	return ok(created)
}

// UpdateProvider validates in, updates the provider on the Backend API and
// replaces the matching local record with the server's version.
func (s *Store) UpdateProvider(ctx context.Context, id uint, in ProviderInput) Result[Provider] {
	if fields := validation.Struct(in); fields != nil {
		return invalid[Provider](ErrInvalidInput, fields)
	}

	updated, err := s.api.UpdateProvider(ctx, id, in)
	if err != nil {
		s.log.Warn().Err(err).Uint("provider_id", id).Msg("update provider failed")
		return backendFailure[Provider]("update provider", err)
	}

	s.mu.Lock()
	if i := s.providerIndex(id); i >= 0 {
		s.providers[i] = updated
	}
	s.mu.Unlock()

	s.log.Info().Uint("provider_id", id).Msg("provider updated")
	return ok(updated)
}

// ToggleProviderStatus deactivates an active provider or activates an
// inactive one. The local flag is flipped once the Backend API accepts the
// change; with reconciliation enabled the record is then re-read from the
// server.
func (s *Store) ToggleProviderStatus(ctx context.Context, id uint) Result[Provider] {
	current, found := s.ProviderByID(id)
	if !found {
		return fail[Provider](KindNotFound, ErrProviderNotFound, fmt.Sprintf("provider %d not found", id))
	}

	target := !current.IsActive
	var err error
	if current.IsActive {
		_, err = s.api.DeactivateProvider(ctx, id)
	} else {
		_, err = s.api.ActivateProvider(ctx, id)
	}
	if err != nil {
		s.log.Warn().Err(err).Uint("provider_id", id).Bool("target_active", target).Msg("toggle provider failed")
		return backendFailure[Provider]("toggle provider", err)
	}

	s.mu.Lock()
	result := current
	if i := s.providerIndex(id); i >= 0 {
		s.providers[i].IsActive = target
		result = s.providers[i]
	} else {
		result.IsActive = target
	}
	s.mu.Unlock()

	s.log.Info().Uint("provider_id", id).Bool("is_active", target).Msg("provider status toggled")

	if s.reconcileOnToggle {
		r := s.ReconcileProvider(ctx, id)
		if r.Success {
			return r
		}
		s.log.Warn().Str("error", r.Error).Uint("provider_id", id).Msg("reconcile after toggle failed, keeping local state")
	}
	return ok(result)
}

// ReconcileProvider replaces the local record with the Backend API's current
// version of it, adding it if it is not known locally.
func (s *Store) ReconcileProvider(ctx context.Context, id uint) Result[Provider] {
	fresh, err := s.api.GetProvider(ctx, id)
	if err != nil {
		return backendFailure[Provider]("reconcile provider", err)
	}

	s.mu.Lock()
	s.upsertProvider(fresh)
	s.mu.Unlock()
	return ok(fresh)
}
