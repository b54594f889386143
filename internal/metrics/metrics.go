// Package metrics exposes Prometheus counters for anomalies and lifecycle
// events the tenancy core is required to signal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProfileStrips counts legacy profile subdocuments stripped from
	// organization records during context resolution. Any non-zero value
	// means stale data violating strict separation is still being served
	// and an offline repair is due.
	ProfileStrips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cortexa_tenancy_profile_strips_total",
		Help: "Legacy profile fields stripped from organization records at resolution time.",
	})

	// OrphanedProjects counts project context resolutions that failed
	// because the parent organization no longer resolves.
	OrphanedProjects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cortexa_tenancy_orphaned_projects_total",
		Help: "Project context loads rejected due to a dangling organization reference.",
	})

	// IntegrityErrors counts dangling owner/creator references reported by
	// the integrity verifier.
	IntegrityErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cortexa_integrity_errors_total",
		Help: "Dangling owner or creator references found by the integrity verifier.",
	})

	// InvitesIssued counts successfully issued invite codes.
	InvitesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cortexa_invites_issued_total",
		Help: "Invite codes issued.",
	})

	// InvitesRedeemed counts invite redemption outcomes by result.
	InvitesRedeemed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cortexa_invites_redeemed_total",
		Help: "Invite redemption attempts by outcome.",
	}, []string{"outcome"})
)
