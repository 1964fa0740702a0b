package judge

import "fmt"

// Box tag identities painted on the cargo in play. The detector reports
// NoTag when nothing readable is in view; an occupied front with no tag is
// the opposing robot itself.
const (
	NoTag      = -1
	NeutralTag = 0
	YellowTag  = 1
	BlueTag    = 2
)

// TagGroup resolves detector tag identities into friend or foe for one
// team assignment.
type TagGroup struct {
	Ally    int
	Enemy   int
	Neutral int
	// Default stands in for the detector when the camera is disabled.
	Default int
}

// TagGroupFor returns the lookup group for a team color.
func TagGroupFor(teamColor string) (TagGroup, error) {
	switch teamColor {
	case "yellow":
		return TagGroup{Ally: YellowTag, Enemy: BlueTag, Neutral: NeutralTag, Default: NoTag}, nil
	case "blue":
		return TagGroup{Ally: BlueTag, Enemy: YellowTag, Neutral: NeutralTag, Default: NoTag}, nil
	default:
		return TagGroup{}, fmt.Errorf("unknown team color: %q", teamColor)
	}
}

// FrontClass maps a detected tag and the front-occupied flag to the front
// object class of the surrounding code. An empty front is always
// FrontNothing regardless of lingering tag reports.
func (g TagGroup) FrontClass(tag int, occupied bool) int {
	if !occupied {
		return FrontNothing
	}
	switch tag {
	case g.Ally:
		return FrontAllyBox
	case g.Neutral:
		return FrontNeutralBox
	case g.Enemy:
		return FrontEnemyBox
	default:
		return FrontEnemyCar
	}
}
