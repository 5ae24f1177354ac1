package models

// WorkerType groups positions; deleting one removes its positions.
type WorkerType struct {
	ID   string `gorm:"size:36;primaryKey" json:"id"`
	Name string `gorm:"size:200;not null" json:"name"`
}

type Position struct {
	ID           string `gorm:"size:36;primaryKey" json:"id"`
	Name         string `gorm:"size:200;not null" json:"name"`
	WorkerTypeID string `gorm:"size:36;index;not null" json:"worker_type_id"`
}

// Status is a per-assignment state such as "Confirmed".
type Status struct {
	ID   string `gorm:"size:36;primaryKey" json:"id"`
	Name string `gorm:"size:200;not null" json:"name"`
}

type Tag struct {
	ID    string `gorm:"size:36;primaryKey" json:"id"`
	Name  string `gorm:"size:200;not null" json:"name"`
	Color string `gorm:"size:16" json:"color"`
}

func (t WorkerType) GetID() string { return t.ID }
func (p Position) GetID() string   { return p.ID }
func (s Status) GetID() string     { return s.ID }
func (t Tag) GetID() string        { return t.ID }
