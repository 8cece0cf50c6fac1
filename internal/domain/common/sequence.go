package common

// SequenceControl is a named, strictly serialized counter.
type SequenceControl struct {
	Name  string `gorm:"column:sequence_name;primaryKey" json:"sequence_name"`
	Value int64  `gorm:"column:sequence_number;not null" json:"sequence_number"`
}

func (SequenceControl) TableName() string { return "sequence_controls" }
