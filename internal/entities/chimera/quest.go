package chimera

// QuestStatus is the lifecycle state of a quest
type QuestStatus string

// Quest statuses
const (
	QuestStatusInactive  QuestStatus = "inactive"
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
	QuestStatusFailed    QuestStatus = "failed"
)

// Objective is one step of a quest
type Objective struct {
	Description string `json:"description" yaml:"description"`
	Completed   bool   `json:"completed" yaml:"completed"`
}

// Quest is an ordered list of objectives
type Quest struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Status      QuestStatus `json:"status" yaml:"status"`
	Objectives  []Objective `json:"objectives" yaml:"objectives"`
}

// AllObjectivesComplete reports whether every objective is done
func (q *Quest) AllObjectivesComplete() bool {
	for _, o := range q.Objectives {
		if !o.Completed {
			return false
		}
	}
	return len(q.Objectives) > 0
}

// Clone returns a deep copy
func (q Quest) Clone() Quest {
	q.Objectives = append([]Objective(nil), q.Objectives...)
	return q
}
