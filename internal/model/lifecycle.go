package model

// Lifecycle 软删除标记：被订单引用过的记录只归档不物理删除
type Lifecycle string

const (
	LifecycleActive   Lifecycle = "active"
	LifecycleInactive Lifecycle = "inactive"
)

func (l Lifecycle) IsActive() bool { return l == LifecycleActive }
