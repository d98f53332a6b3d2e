package render

import "fmt"

// PickingID is what the picking pass reports for a pixel.
type PickingID struct {
	ObjectID   int `json:"objectId"`
	InstanceID int `json:"instanceId"`
	GroupID    int `json:"groupId"`
}

func (p PickingID) String() string {
	return fmt.Sprintf("%d/%d/%d", p.ObjectID, p.InstanceID, p.GroupID)
}

// maxPackedID is the largest id PackID can encode. The all-ones color is
// left for the background.
const maxPackedID = 1<<24 - 2

// NoID is what UnpackID returns for background pixels.
const NoID = -1

// PackID encodes an id into the RGB bytes written by the picking pass.
// Ids outside [0, 2^24-2] are clamped.
func PackID(id int) [3]uint8 {
	id = min(max(id, 0), maxPackedID)
	return [3]uint8{uint8(id >> 16), uint8(id >> 8), uint8(id)}
}

// UnpackID decodes a picking pass pixel.
func UnpackID(rgb [3]uint8) int {
	id := int(rgb[0])<<16 | int(rgb[1])<<8 | int(rgb[2])
	if id > maxPackedID {
		return NoID
	}
	return id
}

// DecodePickingID assembles a PickingID from the three picking pass pixels
// of the object, instance and group channels. ok is false for background.
func DecodePickingID(object, instance, group [3]uint8) (PickingID, bool) {
	o, i, g := UnpackID(object), UnpackID(instance), UnpackID(group)
	if o == NoID || i == NoID || g == NoID {
		return PickingID{}, false
	}
	return PickingID{ObjectID: o, InstanceID: i, GroupID: g}, true
}
