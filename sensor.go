// Copyright 2026 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mindy

// A SensorAttr names a sensible attribute, reachable through the
// sensor opcode or an @attribute literal.
type SensorAttr int

// All sensible attributes.
const (
	SensorX SensorAttr = iota
	SensorY
	SensorSize
	SensorType
	SensorName
	SensorEnabled
	SensorConfig
	SensorMemoryCapacity
	SensorDisplayWidth
	SensorDisplayHeight
	SensorBufferSize
	SensorLinkCount
	SensorIpt
	SensorID
)

var sensorAttrNames = []string{
	"x", "y", "size", "type", "name", "enabled", "config",
	"memoryCapacity", "displayWidth", "displayHeight", "bufferSize",
	"links", "ipt", "id",
}

var sensorAttrByName map[string]SensorAttr

func init() {
	sensorAttrByName = make(map[string]SensorAttr, len(sensorAttrNames))
	for i, n := range sensorAttrNames {
		sensorAttrByName[n] = SensorAttr(i)
	}
}

// String returns the attribute's bare name, without the @ prefix.
func (a SensorAttr) String() string {
	if int(a) >= 0 && int(a) < len(sensorAttrNames) {
		return sensorAttrNames[a]
	}
	return "null"
}

func sensorName(attr SensorAttr) string {
	if int(attr) >= 0 && int(attr) < len(sensorAttrNames) {
		return "@" + sensorAttrNames[attr]
	}
	return "null"
}

// sense reads one attribute of an object. Every undefined combination
// returns null; a dangling building reference returns null for every
// attribute.
func (s *Sim) sense(obj, attr Value) Value {
	switch obj.Kind {
	case KindBuilding:
		b := s.buildingAtPacked(obj.Pos)
		if b == nil {
			return Null
		}
		return s.senseBuilding(b, attr)
	case KindContent:
		if attr.Kind == KindSensor && SensorAttr(attr.ID) == SensorID {
			return NumberVal(float64(obj.ID))
		}
		return Null
	default:
		return Null
	}
}

func (s *Sim) senseBuilding(b *Building, attr Value) Value {
	// Sensing a content enumerant asks for a stored amount; nothing in
	// this core holds items or liquids.
	if attr.Kind == KindContent {
		return NumberVal(0)
	}
	if attr.Kind != KindSensor {
		return Null
	}

	switch SensorAttr(attr.ID) {
	case SensorX:
		return NumberVal(float64(b.Pos.X))
	case SensorY:
		return NumberVal(float64(b.Pos.Y))
	case SensorSize:
		return NumberVal(float64(b.Kind.Size()))
	case SensorType:
		return b.Kind.blockContent()
	case SensorName:
		return StringVal(s.interner.Intern(b.Name))
	case SensorEnabled:
		if b.Kind == SwitchBlock {
			return BoolVal(b.Enabled)
		}
		return BoolVal(true)
	case SensorConfig:
		if b.Kind == SorterBlock {
			return b.Config
		}
		return Null
	case SensorMemoryCapacity:
		return NumberVal(float64(len(b.Memory)))
	case SensorDisplayWidth:
		if isDisplay(b.Kind) {
			return NumberVal(float64(b.DisplayW))
		}
		return Null
	case SensorDisplayHeight:
		if isDisplay(b.Kind) {
			return NumberVal(float64(b.DisplayH))
		}
		return Null
	case SensorBufferSize:
		switch {
		case b.IsProcessor():
			return NumberVal(float64(len(b.Proc.printBuf)))
		case isDisplay(b.Kind):
			return NumberVal(float64(len(b.DrawQueue)))
		default:
			return Null
		}
	case SensorLinkCount:
		if b.IsProcessor() {
			return NumberVal(float64(len(b.Proc.links)))
		}
		return Null
	case SensorIpt:
		if b.IsProcessor() {
			return NumberVal(float64(b.Proc.ipt))
		}
		return Null
	default:
		return Null
	}
}
