package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	TeamsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "teamforge_teams_created_total", Help: "Total teams created"},
	)
	TeamsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "teamforge_teams_deleted_total", Help: "Total teams disbanded"},
	)
	MembershipsGranted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "teamforge_memberships_granted_total", Help: "Total memberships granted via requests or invitations"},
	)
	MembershipGrantsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "teamforge_membership_grants_skipped_total", Help: "Total accepted requests/invitations whose subject already had a team"},
	)
	MessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "teamforge_messages_sent_total", Help: "Total chat messages sent (team and community)"},
	)
	CandidateSearches = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "teamforge_candidate_searches_total", Help: "Total AI candidate searches"},
	)
	CandidateSearchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "teamforge_candidate_search_failures_total", Help: "Total failed AI candidate searches"},
	)
)

// Register registers all collectors with the default prometheus registry
func Register() {
	prometheus.MustRegister(
		TeamsCreated,
		TeamsDeleted,
		MembershipsGranted,
		MembershipGrantsSkipped,
		MessagesSent,
		CandidateSearches,
		CandidateSearchFailures,
	)
}
