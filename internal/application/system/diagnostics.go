package system

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/younwookim/engine2d/internal/ecs"
)

// DiagnosticsName is the name scenes use to suppress or reveal the overlay.
const DiagnosticsName = "diagnostics_overlay"

// logEvery is how many frames pass between diagnostics debug logs.
const logEvery = 300

// Diagnostics is one frame's summary of the engine core.
type Diagnostics struct {
	Frame     uint64
	Entities  int
	Moving    int
	MeanSpeed float64
	MaxSpeed  float64
	Shapes    int
	Contacts  int // entities with at least one contact
	Systems   []ecs.SystemStats
}

// DiagnosticsSystem samples the world and scheduler late in the update phase
// and prints the result as an overlay in the render phase.
type DiagnosticsSystem struct {
	sched     *ecs.Scheduler
	detection *CollisionDetectionSystem
	log       *zap.Logger
	last      Diagnostics
}

// NewDiagnosticsSystem creates the overlay. detection may be nil.
func NewDiagnosticsSystem(sched *ecs.Scheduler, detection *CollisionDetectionSystem, log *zap.Logger) *DiagnosticsSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiagnosticsSystem{sched: sched, detection: detection, log: log}
}

func (s *DiagnosticsSystem) Name() string     { return DiagnosticsName }
func (s *DiagnosticsSystem) UpdateOrder() int { return ecs.OrderLate }
func (s *DiagnosticsSystem) Order() int       { return ecs.RenderOrderOverlay }

// Last returns the most recent sample.
func (s *DiagnosticsSystem) Last() Diagnostics { return s.last }

func (s *DiagnosticsSystem) Update(dt float64) error {
	w := s.sched.World()
	movers := ecs.GetEntitiesWithComponent[ecs.Velocity](w)

	workers := 1
	if opts := s.sched.Options(); opts.EnableParallelExecution && len(movers) > opts.ParallelEntityThreshold {
		workers = opts.Workers()
	}
	speeds, err := ecs.Gather(context.Background(), movers, workers, func(e ecs.Entity) (float64, error) {
		v := ecs.GetComponent[ecs.Velocity](w, e)
		if v == nil {
			return 0, nil
		}
		return v.Len(), nil
	})
	if err != nil {
		return fmt.Errorf("gather speeds: %w", err)
	}

	d := Diagnostics{
		Frame:    s.sched.Frame(),
		Entities: w.Len(),
		Systems:  s.sched.Stats(),
	}
	var sum float64
	for _, sp := range speeds {
		if sp > 0 {
			d.Moving++
		}
		sum += sp
		d.MaxSpeed = max(d.MaxSpeed, sp)
	}
	if len(speeds) > 0 {
		d.MeanSpeed = sum / float64(len(speeds))
	}
	if s.detection != nil {
		d.Shapes = s.detection.Registry().Len()
		for _, set := range s.detection.contacts {
			if len(set) > 0 {
				d.Contacts++
			}
		}
	}
	s.last = d

	if d.Frame%logEvery == 0 {
		s.log.Debug("diagnostics",
			zap.Uint64("frame", d.Frame),
			zap.Int("entities", d.Entities),
			zap.Int("moving", d.Moving),
			zap.Float64("mean_speed", d.MeanSpeed),
			zap.Int("shapes", d.Shapes),
			zap.Int("contacts", d.Contacts),
		)
	}
	return nil
}

func (s *DiagnosticsSystem) Render(screen *ebiten.Image, dt float64) error {
	ebitenutil.DebugPrint(screen, s.last.String())
	return nil
}

// String formats the sample the way the overlay shows it.
func (d Diagnostics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %d  entities %d  shapes %d  contacts %d\n", d.Frame, d.Entities, d.Shapes, d.Contacts)
	fmt.Fprintf(&b, "moving %d  speed mean %.1f max %.1f\n", d.Moving, d.MeanSpeed, d.MaxSpeed)
	for _, st := range d.Systems {
		fmt.Fprintf(&b, "%-20s %-6s %8s  n=%d w=%d\n", st.Name, st.Phase, st.Duration.Round(time.Microsecond), st.Entities, st.Workers)
	}
	return b.String()
}
