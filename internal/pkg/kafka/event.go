package kafka

import "time"

const (
	EventUserSignedUp   = "user.signed_up"
	EventUserDeleted    = "user.deleted"
	EventUserFollowed   = "user.followed"
	EventUserUnfollowed = "user.unfollowed"
	EventMessageCreated = "message.created"
	EventMessageDeleted = "message.deleted"
	EventMessageLiked   = "message.liked"
	EventMessageUnliked = "message.unliked"
)

// Event 发布到 Kafka 的领域事件
type Event struct {
	Name      string      `json:"name"`
	ActorID   uint64      `json:"actor_id"`
	TargetID  uint64      `json:"target_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
