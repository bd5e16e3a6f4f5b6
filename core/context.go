package core

// RecommendContext 承载一次请求的偏好，贯穿整个 Pipeline 透传，Node 只读。
type RecommendContext struct {
	// RequestID 用于日志关联，可为空
	RequestID string

	Preferences Preferences
}

func NewRecommendContext(prefs Preferences) *RecommendContext {
	return &RecommendContext{Preferences: prefs}
}
