package enum

type EntityType string

const (
	SCAN    EntityType = "SCAN"
	BOOKING EntityType = "BOOKING"
)

func (entityType EntityType) String() string {
	return string(entityType)
}

func GetEntityType(s string) EntityType {
	return EntityType(s)
}
