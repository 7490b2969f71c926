package mqtt

import "fmt"

// Topic prefixes of the LightGuard bus.
const (
	// TopicPrefix is the root of every LightGuard topic.
	TopicPrefix = "lightguard"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for LightGuard MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.ActuatorCommand() // "lightguard/actuator/command"
type Topics struct{}

// PerceptionFrame carries the tracked-object snapshot from perception.
//
// Example: lightguard/perception/frame
func (Topics) PerceptionFrame() string {
	return TopicPrefix + "/perception/frame"
}

// EgoState carries ego kinematics and engine state.
//
// Example: lightguard/vehicle/ego
func (Topics) EgoState() string {
	return TopicPrefix + "/vehicle/ego"
}

// ManualBeam carries the driver's beam selector position.
//
// Example: lightguard/driver/beam
func (Topics) ManualBeam() string {
	return TopicPrefix + "/driver/beam"
}

// ActuatorCommand carries the per-tick output for the actuator driver.
//
// Example: lightguard/actuator/command
func (Topics) ActuatorCommand() string {
	return TopicPrefix + "/actuator/command"
}

// CoreFault carries fault reports of the given kind.
//
// Example: lightguard/core/fault/TIMING_FAULT
func (Topics) CoreFault(kind string) string {
	return fmt.Sprintf("%s/core/fault/%s", TopicPrefix, kind)
}

// CoreState carries system state transitions. Retained.
//
// Example: lightguard/core/state
func (Topics) CoreState() string {
	return TopicPrefix + "/core/state"
}

// SystemStatus is the retained online/offline status, also used for the LWT.
//
// Example: lightguard/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllCoreFaults matches every fault topic.
//
// Pattern: lightguard/core/fault/+
func (Topics) AllCoreFaults() string {
	return TopicPrefix + "/core/fault/+"
}

// AllTopics matches all LightGuard traffic.
//
// Pattern: lightguard/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
