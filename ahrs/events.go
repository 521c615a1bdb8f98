package ahrs

import "log"

// RotationEvent is published each time the filter produces a new, valid
// (post-startup) orientation estimate.
type RotationEvent struct {
	Axis     [3]float64
	AngleDeg float64
}

// Subscribe registers ch to receive rotation-changed events. The channel
// should be buffered if the subscriber cannot guarantee it drains promptly;
// publishing never blocks on a slow subscriber (see broadcast below).
func (e *Estimator) Subscribe(ch chan<- RotationEvent) {
	e.subscribersMu.Lock()
	defer e.subscribersMu.Unlock()
	e.subscribers = append(e.subscribers, ch)
}

// Unsubscribe removes a previously registered channel. It is a no-op if ch
// was never subscribed.
func (e *Estimator) Unsubscribe(ch chan<- RotationEvent) {
	e.subscribersMu.Lock()
	defer e.subscribersMu.Unlock()
	for i, c := range e.subscribers {
		if c == ch {
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			return
		}
	}
}

// broadcast fans ev out to every subscriber without blocking; a subscriber
// that isn't keeping up drops the event rather than stalling the filter.
func (e *Estimator) broadcast(ev RotationEvent) {
	e.subscribersMu.Lock()
	defer e.subscribersMu.Unlock()
	for _, ch := range e.subscribers {
		select {
		case ch <- ev:
		default:
			log.Println("ahrs: subscriber channel full, dropping rotation event")
		}
	}
}
