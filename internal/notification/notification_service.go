package notification

import "fmt"

// Notifier emits typed notifications. Callers treat every method as
// best-effort: a returned error is logged and swallowed, never propagated
// into the triggering operation's result.
type Notifier struct {
	repo NotificationRepository
}

func NewNotifier(repo NotificationRepository) *Notifier {
	return &Notifier{repo: repo}
}

// Emit writes a single notification row.
func (n *Notifier) Emit(userID uint, typ Type, title, message string, relatedTeam, relatedMatch, relatedUser *uint) error {
	return n.repo.Create(&Notification{
		UserID:         userID,
		Type:           typ,
		Title:          title,
		Message:        message,
		RelatedTeamID:  relatedTeam,
		RelatedMatchID: relatedMatch,
		RelatedUserID:  relatedUser,
	})
}

// TeamJoinRequested notifies a team leader that someone asked to join.
func (n *Notifier) TeamJoinRequested(leaderID, teamID uint, teamName string, requesterID uint, requesterName string) error {
	message := fmt.Sprintf("%s requested to join %s", requesterName, teamName)
	return n.Emit(leaderID, TypeTeamJoinRequest, "Team join request", message, &teamID, nil, &requesterID)
}

// MatchApplied notifies the host leader that a guest team applied.
func (n *Notifier) MatchApplied(hostLeaderID, matchID, guestTeamID uint, guestTeamName string) error {
	message := fmt.Sprintf("%s applied to your match", guestTeamName)
	return n.Emit(hostLeaderID, TypeMatchApply, "Match application", message, &guestTeamID, &matchID, nil)
}

// MatchAccepted notifies the guest leader that the host accepted their team.
func (n *Notifier) MatchAccepted(guestLeaderID, matchID, hostTeamID uint, hostTeamName string) error {
	message := fmt.Sprintf("%s accepted your match application", hostTeamName)
	return n.Emit(guestLeaderID, TypeMatchAccepted, "Match accepted", message, &hostTeamID, &matchID, nil)
}
