package serial

import "encoding/xml"

// Element and attribute names of the document format. Scalars are kept as
// strings so that version gating and error reporting happen in one place
// (parse.go) instead of inside encoding/xml.

const rootElement = "Graph"

type systemXML struct {
	XMLName                   xml.Name     `xml:"System"`
	ModelID                   string       `xml:"ModelId,attr"`
	WorldSpace                string       `xml:"WorldSpace,attr"`
	MaxNb                     string       `xml:"MaxNb,attr"`
	SpawnRate                 string       `xml:"SpawnRate,attr"`
	BlendingMode              string       `xml:"BlendingMode,attr"`
	SoftParticlesFadeDistance string       `xml:"SoftParticlesFadeDistance,attr"`
	CameraFadeDistance        string       `xml:"CameraFadeDistance,attr"`
	OrderPriority             string       `xml:"OrderPriority,attr"`
	RenderQueueDelta          string       `xml:"RenderQueueDelta,attr"`
	Contexts                  []contextXML `xml:"Context"`
}

type contextXML struct {
	XMLName   xml.Name   `xml:"Context"`
	DescID    string     `xml:"DescId,attr"`
	Position  string     `xml:"Position,attr"`
	Collapsed string     `xml:"Collapsed,attr"`
	Slots     []slotXML  `xml:"Slot"`
	Blocks    []blockXML `xml:"Block"`
}

type blockXML struct {
	XMLName   xml.Name  `xml:"Block"`
	DescID    string    `xml:"DescId,attr"`
	Hash      string    `xml:"Hash,attr"`
	Collapsed string    `xml:"Collapsed,attr"`
	Enabled   string    `xml:"Enabled,attr"`
	Slots     []slotXML `xml:"Slot"`
}

type dataNodeXML struct {
	XMLName  xml.Name       `xml:"DataNode"`
	ModelID  string         `xml:"ModelId,attr"`
	Position string         `xml:"Position,attr"`
	Exposed  string         `xml:"Exposed,attr"`
	Blocks   []dataBlockXML `xml:"DataBlock"`
}

type dataBlockXML struct {
	XMLName     xml.Name `xml:"DataBlock"`
	DescID      string   `xml:"DescId,attr"`
	Collapsed   string   `xml:"Collapsed,attr"`
	ExposedName string   `xml:"ExposedName,attr"`
	Slot        *slotXML `xml:"Slot"`
}

type commentXML struct {
	XMLName  xml.Name `xml:"Comment"`
	Position string   `xml:"Position,attr"`
	Size     string   `xml:"Size,attr"`
	Title    string   `xml:"Title,attr"`
	Body     string   `xml:"Body,attr"`
	Color    string   `xml:"Color,attr"`
}

type spawnerNodeXML struct {
	XMLName  xml.Name          `xml:"SpawnerNode"`
	ModelID  string            `xml:"ModelId,attr"`
	Position string            `xml:"Position,attr"`
	Blocks   []spawnerBlockXML `xml:"SpawnerBlock"`
}

type spawnerBlockXML struct {
	XMLName   xml.Name  `xml:"SpawnerBlock"`
	Type      string    `xml:"Type,attr"`
	Collapsed string    `xml:"Collapsed,attr"`
	Slots     []slotXML `xml:"Slot"`
}

type eventNodeXML struct {
	XMLName  xml.Name `xml:"EventNode"`
	ModelID  string   `xml:"ModelId,attr"`
	Position string   `xml:"Position,attr"`
	Name     string   `xml:"Name,attr"`
	Locked   string   `xml:"Locked,attr"`
}

// slotXML is one root port with its whole subtree. Values, Collapsed and
// WorldSpace hold one entry per port in depth-first pre-order; composite
// ports contribute an empty value.
type slotXML struct {
	XMLName    xml.Name `xml:"Slot"`
	ID         string   `xml:"SlotId,attr"`
	Values     []string `xml:"Values>Value"`
	Collapsed  string   `xml:"Collapsed"`
	WorldSpace string   `xml:"WorldSpace"`
}

type connectionsXML struct {
	XMLName xml.Name        `xml:"Connections"`
	Items   []connectionXML `xml:"Connection"`
}

type connectionXML struct {
	ID      string `xml:"Id,attr"`
	Targets string `xml:",chardata"`
}

type spawnerConnectionsXML struct {
	XMLName xml.Name `xml:"SpawnerConnections"`
	ID      string   `xml:"Id,attr"`
	Systems string   `xml:",chardata"`
}

type eventConnectionsXML struct {
	XMLName xml.Name `xml:"EventConnections"`
	ID      string   `xml:"Id,attr"`
	Start   *string  `xml:"Start"`
	Stop    *string  `xml:"Stop"`
}
