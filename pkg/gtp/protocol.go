// Package gtp implements the Go Text Protocol v2 command subset
// Antares answers, dispatching each line onto the small operation set
// pkg/engine.Engine exposes.
package gtp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mciura/antares/pkg/engine"
	"github.com/mciura/antares/pkg/eval"
	"github.com/mciura/antares/pkg/havannah"
)

const (
	name            = "antares"
	version         = "1.0"
	protocolVersion = "2"
)

// handler is one command's implementation: given the arguments
// following the command name, it returns the text to place after the
// "=id " response marker, or an error to report as a "?id " failure.
type handler func(args []string) (string, error)

// Protocol is the command dispatcher, mirroring pkg/uci/protocol.go's
// handler-table shape but for GTP's id/command/args line grammar and
// its "=id text\n\n" / "?id text\n\n" response framing instead of
// UCI's bare, unframed lines.
type Protocol struct {
	engine   *engine.Engine
	log      zerolog.Logger
	handlers map[string]handler
	quit     bool
}

// New returns a Protocol driving eng. log receives one structured
// event per malformed or failing command; it is distinct from the
// engine's own per-iteration search diagnostics.
func New(eng *engine.Engine, log zerolog.Logger) *Protocol {
	p := &Protocol{engine: eng, log: log}
	p.handlers = map[string]handler{
		"protocol_version": p.protocolVersionCommand,
		"name":             p.nameCommand,
		"version":          p.versionCommand,
		"known_command":    p.knownCommandCommand,
		"list_commands":    p.listCommandsCommand,
		"quit":             p.quitCommand,
		"boardsize":        p.boardsizeCommand,
		"clear_board":      p.clearBoardCommand,
		"komi":             p.komiCommand,
		"play":             p.playCommand,
		"putstones":        p.putstonesCommand,
		"playgame":         p.playgameCommand,
		"genmove":          p.genmoveCommand,
		"undo":             p.undoCommand,
		"showboard":        p.showboardCommand,
		"havannahwinner":   p.havannahWinnerCommand,
		"eval":             p.evalCommand,
		"set_option":       p.setOptionCommand,
		"list_options":     p.listOptionsCommand,
	}
	return p
}

// Run reads one command per line from r until "quit" or EOF, writing
// each response to w.
func (p *Protocol) Run(r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p.handleLine(line, w)
		if p.quit {
			return
		}
	}
}

func (p *Protocol) handleLine(line string, w io.Writer) {
	fields := strings.Fields(line)
	id := ""
	if len(fields) > 0 {
		if _, err := strconv.Atoi(fields[0]); err == nil {
			id = fields[0]
			fields = fields[1:]
		}
	}
	if len(fields) == 0 {
		writeFailure(w, id, "empty command")
		return
	}
	commandName := strings.ToLower(fields[0])
	args := fields[1:]

	h, ok := p.handlers[commandName]
	if !ok {
		p.log.Warn().Str("command", commandName).Msg("unknown gtp command")
		writeFailure(w, id, "unknown command")
		return
	}
	result, err := h(args)
	if err != nil {
		p.log.Warn().Str("command", commandName).Err(err).Msg("gtp command failed")
		writeFailure(w, id, err.Error())
		return
	}
	writeSuccess(w, id, result)
}

func writeSuccess(w io.Writer, id, text string) {
	if text == "" {
		fmt.Fprintf(w, "=%s\n\n", id)
		return
	}
	fmt.Fprintf(w, "=%s %s\n\n", id, text)
}

func writeFailure(w io.Writer, id, text string) {
	fmt.Fprintf(w, "?%s %s\n\n", id, text)
}

func (p *Protocol) protocolVersionCommand(args []string) (string, error) {
	return protocolVersion, nil
}

func (p *Protocol) nameCommand(args []string) (string, error) {
	return name, nil
}

func (p *Protocol) versionCommand(args []string) (string, error) {
	return version, nil
}

func (p *Protocol) knownCommandCommand(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("gtp: known_command wants exactly one argument")
	}
	_, ok := p.handlers[strings.ToLower(args[0])]
	if ok {
		return "true", nil
	}
	return "false", nil
}

func (p *Protocol) listCommandsCommand(args []string) (string, error) {
	names := make([]string, 0, len(p.handlers))
	for n := range p.handlers {
		names = append(names, n)
	}
	sortStrings(names)
	return strings.Join(names, "\n"), nil
}

func (p *Protocol) quitCommand(args []string) (string, error) {
	p.quit = true
	return "", nil
}

func (p *Protocol) boardsizeCommand(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("gtp: boardsize wants exactly one argument")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("gtp: boardsize argument must be an integer")
	}
	if n != havannah.SideLength {
		return "", fmt.Errorf("gtp: unsupported board size %d, only %d is built", n, havannah.SideLength)
	}
	return "", nil
}

func (p *Protocol) clearBoardCommand(args []string) (string, error) {
	p.engine.Reset()
	return "", nil
}

func (p *Protocol) komiCommand(args []string) (string, error) {
	// Havannah has no komi; accepted and ignored so generic GTP
	// controllers that always send it don't fail out.
	return "", nil
}

func parseColor(s string) (havannah.Player, error) {
	switch strings.ToLower(s) {
	case "w", "white", "b1":
		return havannah.White, nil
	case "b", "black", "b2":
		return havannah.Black, nil
	}
	return havannah.White, fmt.Errorf("gtp: unrecognized color %q", s)
}

func (p *Protocol) playCommand(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("gtp: play wants <color> <move>")
	}
	player, err := parseColor(args[0])
	if err != nil {
		return "", err
	}
	_, err = p.engine.Move(player, args[1])
	return "", err
}

func (p *Protocol) putstonesCommand(args []string) (string, error) {
	if len(args)%2 != 0 {
		return "", fmt.Errorf("gtp: putstones wants pairs of <color> <move>")
	}
	for i := 0; i < len(args); i += 2 {
		player, err := parseColor(args[i])
		if err != nil {
			return "", err
		}
		if _, err := p.engine.Move(player, args[i+1]); err != nil {
			return "", err
		}
	}
	return "", nil
}

func (p *Protocol) playgameCommand(args []string) (string, error) {
	return p.putstonesCommand(args)
}

func (p *Protocol) genmoveCommand(args []string) (string, error) {
	player := havannah.White
	if len(args) >= 1 {
		var err error
		player, err = parseColor(args[0])
		if err != nil {
			return "", err
		}
	} else {
		player = p.engine.Position().ToMove()
	}
	var seconds float64
	if len(args) >= 2 {
		var err error
		seconds, err = strconv.ParseFloat(args[1], 64)
		if err != nil {
			return "", fmt.Errorf("gtp: malformed seconds argument %q", args[1])
		}
	}
	cell, _, err := p.engine.SuggestMove(player, seconds)
	if err != nil {
		return "", err
	}
	return havannah.CellName(cell, p.engine.Options().CoordinateScheme()), nil
}

func (p *Protocol) undoCommand(args []string) (string, error) {
	return "", p.engine.Undo()
}

func (p *Protocol) showboardCommand(args []string) (string, error) {
	return "\n" + p.engine.GetBoardString(), nil
}

func (p *Protocol) havannahWinnerCommand(args []string) (string, error) {
	switch p.engine.Winner() {
	case engine.WhiteWon:
		return "white", nil
	case engine.Draw:
		return "draw", nil
	case engine.BlackWon:
		return "black", nil
	default:
		return "none", nil
	}
}

func (p *Protocol) evalCommand(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("gtp: eval wants at least a color")
	}
	player, err := parseColor(args[0])
	if err != nil {
		return "", err
	}
	if len(args) == 1 {
		return p.engine.GetPlayerEvaluationString(player), nil
	}
	cell1, cell2, err := parseConnection(args[1])
	if err != nil {
		return "", err
	}
	return p.engine.GetPartialEvaluationString(player, cell1, cell2), nil
}

// parseConnection decodes the `eval <color> <connection>` grammar:
// "ring", "bridge", "fork", "total", or two edge/corner tags separated
// by a hyphen (each optionally suffixed with "'" for an extra move,
// which this engine treats as equivalent to the bare tag since it
// carries no separate move-count discount in this implementation).
func parseConnection(s string) (havannah.Cell, havannah.Cell, error) {
	switch strings.ToLower(s) {
	case "ring":
		return eval.GoalRing, eval.GoalRing, nil
	case "bridge":
		return eval.GoalRing, eval.GoalBridge, nil
	case "fork":
		return eval.GoalRing, eval.GoalFork, nil
	case "total":
		return eval.GoalRing, eval.GoalTotal, nil
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("gtp: malformed connection %q", s)
	}
	c1, _, ok1 := havannah.GetCellEdgeOrCorner(parts[0])
	c2, _, ok2 := havannah.GetCellEdgeOrCorner(parts[1])
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("gtp: malformed connection %q", s)
	}
	return c1, c2, nil
}

func (p *Protocol) setOptionCommand(args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("gtp: set_option wants <name> <value>")
	}
	return "", p.engine.SetOption(args[0], args[1])
}

func (p *Protocol) listOptionsCommand(args []string) (string, error) {
	opts := p.engine.Options()
	return fmt.Sprintf("use_lg_coordinates %v\nseconds_per_move %v", opts.UseLgCoordinates, opts.SecondsPerMove), nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
