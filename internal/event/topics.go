package event

// Topic names are fixed at system initialization. Single partition,
// single replica; within-topic order is all the consumers rely on.
const (
	TopicUserEvents  = "user-events"
	TopicGameEvents  = "game-events"
	TopicOfferEvents = "offer-events"
)

// Topics returns every topic the system uses, in creation order.
func Topics() []string {
	return []string{TopicUserEvents, TopicGameEvents, TopicOfferEvents}
}
