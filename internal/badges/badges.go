// Package badges tracks per-user activity counters and the monotonic
// badge-unlock state machine.
package badges

import (
	"fmt"

	"github.com/fidelia-app/fidelia-server/internal/loyalty"
)

// ID identifies a badge. The set is fixed; dispatch is by identifier, not
// by display name.
type ID string

const (
	PremierPas           ID = "premier_pas"
	ScanneurAssidu       ID = "scanneur_assidu"
	UtilisateurQuotidien ID = "utilisateur_quotidien"
	Explorateur          ID = "explorateur"
	Marathonien          ID = "marathonien"
)

// Unlock thresholds.
const (
	distinctCodesGoal = 5
	streakGoal        = 3
	totalScansGoal    = 10
)

// RequiredScreens are the screens the Explorateur badge requires.
var RequiredScreens = []string{"Rewards", "Badges", "ConvertRewards"}

// definition is one row of the static badge table: identity, display
// strings, the unlock predicate, and the progress label.
type definition struct {
	ID          ID
	Name        string
	Description string
	Unlocked    func(p *Progress) bool
	Progress    func(p *Progress) string
}

// catalog is the fixed, ordered badge table. Predicates are evaluated in
// this order after every event, and View reports badges in this order.
var catalog = []definition{
	{
		ID:          PremierPas,
		Name:        "Premier Pas",
		Description: "Scannez votre premier QR Code",
		Unlocked:    func(p *Progress) bool { return p.TotalScans >= 1 },
		Progress: func(p *Progress) string {
			if p.TotalScans >= 1 {
				return "1/1"
			}
			return fmt.Sprintf("%d/1", p.TotalScans)
		},
	},
	{
		ID:          ScanneurAssidu,
		Name:        "Scanneur Assidu",
		Description: "Scannez 5 QR Codes différents",
		Unlocked:    func(p *Progress) bool { return len(p.ScannedCodes) >= distinctCodesGoal },
		Progress: func(p *Progress) string {
			return fmt.Sprintf("%d/%d", len(p.ScannedCodes), distinctCodesGoal)
		},
	},
	{
		ID:          UtilisateurQuotidien,
		Name:        "Utilisateur Quotidien",
		Description: "Scannez un QR Code 3 jours consécutifs",
		Unlocked: func(p *Progress) bool {
			return loyalty.LongestConsecutiveRun(p.ActivityDates) >= streakGoal
		},
		Progress: func(p *Progress) string {
			return fmt.Sprintf("%d/%d jours", loyalty.LongestConsecutiveRun(p.ActivityDates), streakGoal)
		},
	},
	{
		ID:          Explorateur,
		Name:        "Explorateur",
		Description: "Visitez tous les écrans de l'application",
		Unlocked: func(p *Progress) bool {
			for _, screen := range RequiredScreens {
				if !contains(p.VisitedScreens, screen) {
					return false
				}
			}
			return true
		},
		Progress: func(p *Progress) string {
			return fmt.Sprintf("%d/%d écrans", len(p.VisitedScreens), len(RequiredScreens))
		},
	},
	{
		ID:          Marathonien,
		Name:        "Marathonien",
		Description: "Scannez 10 QR Codes au total",
		Unlocked:    func(p *Progress) bool { return p.TotalScans >= totalScansGoal },
		Progress: func(p *Progress) string {
			return fmt.Sprintf("%d/%d", p.TotalScans, totalScansGoal)
		},
	},
}

// Status is the display projection of one badge.
type Status struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
	Progress    string `json:"progress"`
}

// View projects a progress record onto the full badge table, in table
// order. It never mutates p; an all-zero progress yields five unearned
// badges.
func View(p *Progress) []Status {
	out := make([]Status, 0, len(catalog))
	for _, def := range catalog {
		out = append(out, Status{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Earned:      p.Earned[def.ID],
			Progress:    def.Progress(p),
		})
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
