package service

// Broadcaster pushes events to live dashboard subscribers (avoids an import
// cycle with the websocket hub)
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

// MsgStatsUpdated is sent with the fresh DerivedStatistics after every write
const MsgStatsUpdated = "stats_updated"
