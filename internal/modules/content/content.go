package content

// Class is a grade level; the root of the curriculum tree.
type Class struct {
	ID          int      `db:"id" json:"id"`
	Name        string   `db:"name" json:"name"`
	Description string   `db:"description" json:"description"`
	Price       *float64 `db:"price" json:"price"`
	IsActive    bool     `db:"is_active" json:"isActive"`

	Subjects []Subject `db:"-" json:"subjects,omitempty"`
}

type Subject struct {
	ID         string   `db:"id" json:"id"`
	ClassID    int      `db:"class_id" json:"classId"`
	Name       string   `db:"name" json:"name"`
	Icon       string   `db:"icon" json:"icon"`
	Color      string   `db:"color" json:"color"`
	OrderIndex int      `db:"order_index" json:"orderIndex"`
	Price      *float64 `db:"price" json:"price,omitempty"`
	Currency   string   `db:"currency" json:"currency"`

	Chapters []Chapter `db:"-" json:"chapters,omitempty"`
}

type Chapter struct {
	ID         string `db:"id" json:"id"`
	SubjectID  string `db:"subject_id" json:"subjectId"`
	Name       string `db:"name" json:"name"`
	OrderIndex int    `db:"order_index" json:"orderIndex"`

	Topics []Topic `db:"-" json:"topics,omitempty"`
}

type Topic struct {
	ID          string `db:"id" json:"id"`
	ChapterID   string `db:"chapter_id" json:"chapterId"`
	Name        string `db:"name" json:"name"`
	Type        string `db:"type" json:"type"`
	Duration    *int   `db:"duration" json:"duration"`
	Description string `db:"description" json:"description"`
	Difficulty  string `db:"difficulty" json:"difficulty"`
	OrderIndex  int    `db:"order_index" json:"orderIndex"`
}

// AccessFull is the only access level; there is no paid tier.
const AccessFull = "full"

// SubjectAccess is the access verdict for one subject.
type SubjectAccess struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	HasAccess  bool     `json:"hasAccess"`
	AccessType string   `json:"accessType"`
	Price      *float64 `json:"price,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	CanUpgrade bool     `json:"canUpgrade"`
}

// ClassAccess is the access verdict for a class and each of its subjects.
type ClassAccess struct {
	ClassID           int             `json:"classId"`
	ClassName         string          `json:"className"`
	ClassPrice        *float64        `json:"classPrice"`
	HasFullAccess     bool            `json:"hasFullAccess"`
	AccessType        string          `json:"accessType"`
	SubjectAccess     []SubjectAccess `json:"subjectAccess"`
	CanUpgradeToClass bool            `json:"canUpgradeToClass"`
}
