package badges

import "time"

// Award is a single badge earned by a learner.
type Award struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Rarity    Rarity    `json:"rarity"`
	Name      string    `json:"name"`
	Topic     string    `json:"topic,omitempty"`
	SourceID  string    `json:"source_id,omitempty"` // quiz or session that earned it
	Reason    string    `json:"reason"`
	AwardedAt time.Time `json:"awarded_at"`
}
