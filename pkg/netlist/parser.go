package netlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"voltlab/pkg/circuit"
	"voltlab/pkg/device"
)

// Netlist is a parsed circuit description plus any analysis directive
// found in the file.
type Netlist struct {
	Title   string
	Circuit *circuit.Circuit
	NodeMap map[string]*device.Node
	Tran    *TranParams
}

// TranParams carries a ".tran step stop" directive.
type TranParams struct {
	Step float64
	Stop float64
}

// Node resolves a node name from the netlist; ground for "0"/"gnd".
func (n *Netlist) Node(name string) (*device.Node, bool) {
	if isGround(name) {
		return n.Circuit.Ground(), true
	}
	node, ok := n.NodeMap[strings.ToLower(name)]
	return node, ok
}

func ParseFile(path string) (*Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening netlist: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func ParseString(s string) (*Netlist, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads element cards one per line. Supported cards:
//
//	Rname n1 n2 value        resistor
//	Vname n1 n2 value        DC voltage source
//	Iname n1 n2 value        DC current source
//	Cname n1 n2 value        capacitor
//	Lname n1 n2 value        inductor
//	Dname n1 n2              diode
//	Xname n1 n2 n3 n4 ratio  ideal transformer
//	.title text
//	.tran step stop
//	.op
//
// Lines starting with '*' are comments. Node names are arbitrary;
// "0" and "gnd" are ground.
func Parse(r io.Reader) (*Netlist, error) {
	nl := &Netlist{
		Circuit: circuit.New(""),
		NodeMap: make(map[string]*device.Node),
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}

		fields := strings.Fields(line)
		if strings.HasPrefix(line, ".") {
			if err := nl.parseDirective(fields); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			continue
		}

		if err := nl.parseElement(fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %w", err)
	}

	return nl, nil
}

func (nl *Netlist) parseDirective(fields []string) error {
	switch strings.ToLower(fields[0]) {
	case ".title":
		nl.Title = strings.Join(fields[1:], " ")

	case ".op":
		// DC operating point is the default; nothing to record.

	case ".tran":
		if len(fields) < 3 {
			return fmt.Errorf("insufficient tran parameters, need step and stop")
		}
		step, err := ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid tstep: %w", err)
		}
		stop, err := ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid tstop: %w", err)
		}
		if step <= 0 || stop <= 0 {
			return fmt.Errorf("tran step and stop must be positive")
		}
		nl.Tran = &TranParams{Step: step, Stop: stop}

	case ".end":
		// Accepted for SPICE compatibility.

	default:
		return fmt.Errorf("unsupported directive: %s", fields[0])
	}
	return nil
}

func (nl *Netlist) parseElement(fields []string) error {
	name := fields[0]
	kind := strings.ToUpper(name[:1])

	nodesWanted := 2
	valueWanted := true
	switch kind {
	case "D":
		valueWanted = false
	case "X":
		nodesWanted = 4
	case "R", "V", "I", "C", "L":
	default:
		return fmt.Errorf("unsupported element type: %s", name)
	}

	want := 1 + nodesWanted
	if valueWanted {
		want++
	}
	if len(fields) < want {
		return fmt.Errorf("element %s: expected %d fields, got %d", name, want, len(fields))
	}

	nodes := make([]*device.Node, nodesWanted)
	for i := 0; i < nodesWanted; i++ {
		nodes[i] = nl.node(fields[1+i])
	}

	value := 0.0
	if valueWanted {
		var err error
		value, err = ParseValue(fields[1+nodesWanted])
		if err != nil {
			return fmt.Errorf("element %s: %w", name, err)
		}
	}

	ckt := nl.Circuit
	switch kind {
	case "R":
		if value == 0 {
			return fmt.Errorf("resistor %s: value must be nonzero", name)
		}
		ckt.AddComponent(device.NewResistor(name, nodes[0], nodes[1], value))
	case "V":
		ckt.AddComponent(device.NewVoltageSource(name, nodes[0], nodes[1], value))
	case "I":
		ckt.AddComponent(device.NewCurrentSource(name, nodes[0], nodes[1], value))
	case "C":
		ckt.AddComponent(device.NewCapacitor(name, nodes[0], nodes[1], value))
	case "L":
		if value == 0 {
			return fmt.Errorf("inductor %s: value must be nonzero", name)
		}
		ckt.AddComponent(device.NewInductor(name, nodes[0], nodes[1], value))
	case "D":
		ckt.AddComponent(device.NewDiode(name, nodes[0], nodes[1]))
	case "X":
		if value == 0 {
			return fmt.Errorf("transformer %s: ratio must be nonzero", name)
		}
		ckt.AddComponent(device.NewTransformer(name, nodes[0], nodes[1], nodes[2], nodes[3], value))
	}

	return nil
}

func (nl *Netlist) node(name string) *device.Node {
	if isGround(name) {
		return nl.Circuit.Ground()
	}
	key := strings.ToLower(name)
	if n, ok := nl.NodeMap[key]; ok {
		return n
	}
	n := nl.Circuit.AddNode()
	nl.NodeMap[key] = n
	return n
}

func isGround(name string) bool {
	return name == "0" || strings.EqualFold(name, "gnd")
}

var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?[a-zA-Z]*$`)

var unitMap = map[string]float64{
	"T":   1e12,
	"G":   1e9,
	"M":   1e6,
	"meg": 1e6,
	"K":   1e3,
	"k":   1e3,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

// ParseValue parses a number with an optional SPICE magnitude suffix
// and an optional trailing unit, e.g. "10", "1k", "4.7u", "2meg",
// "100nF".
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	if matches[2] != "" {
		num *= unitMap[matches[2]]
	}

	return num, nil
}
