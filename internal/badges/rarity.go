package badges

import "strings"

// Rarity grades how hard a badge was to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AllRarities returns the rarities from lowest to highest.
func AllRarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}
}

// DisplayName capitalizes known rarities and returns others verbatim.
func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return strings.ToUpper(string(r[:1])) + string(r[1:])
	default:
		return string(r)
	}
}

// ladder holds the minimum values for rare, epic and legendary.
type ladder [3]float64

func (l ladder) grade(v float64) Rarity {
	switch {
	case v >= l[2]:
		return RarityLegendary
	case v >= l[1]:
		return RarityEpic
	case v >= l[0]:
		return RarityRare
	default:
		return RarityCommon
	}
}

var (
	streakLadder    = ladder{10, 15, 20}
	quizLadder      = ladder{0.50, 0.75, 0.90}
	levelLadder     = ladder{5, 10, 20}
	dayStreakLadder = ladder{7, 14, 30}
)

// StreakRarity grades a run of consecutive correct answers.
func StreakRarity(length int) Rarity { return streakLadder.grade(float64(length)) }

// QuizRarity grades a finished quiz by accuracy in [0, 1].
func QuizRarity(accuracy float64) Rarity { return quizLadder.grade(accuracy) }

func LevelRarity(level int) Rarity { return levelLadder.grade(float64(level)) }

// DayStreakRarity grades a run of consecutive active days.
func DayStreakRarity(days int) Rarity { return dayStreakLadder.grade(float64(days)) }
