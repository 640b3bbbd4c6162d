package session

import "fmt"

// verb identifies a Sparkplug message kind.
type verb string

const (
	verbBirth verb = "BIRTH"
	verbDeath verb = "DEATH"
	verbData  verb = "DATA"
	verbCmd   verb = "CMD"
)

func nodeTopic(groupID, edgeNodeID string, v verb) string {
	return fmt.Sprintf("spBv1.0/%s/N%s/%s", groupID, v, edgeNodeID)
}

func deviceTopic(groupID, edgeNodeID, deviceName string, v verb) string {
	return fmt.Sprintf("spBv1.0/%s/D%s/%s/%s", groupID, v, edgeNodeID, deviceName)
}

func nodeCmdSubscription(groupID, edgeNodeID string) string {
	return fmt.Sprintf("spBv1.0/%s/NCMD/%s/#", groupID, edgeNodeID)
}

func deviceCmdSubscription(groupID, edgeNodeID string) string {
	return fmt.Sprintf("spBv1.0/%s/DCMD/%s/#", groupID, edgeNodeID)
}
