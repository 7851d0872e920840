package main

import (
	"context"
	"flag"
	"math"
	"math/rand"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/akmonengine/arbor"
	"github.com/akmonengine/arbor/components"
	"github.com/akmonengine/arbor/config"
	"github.com/akmonengine/arbor/ecs"
	"github.com/akmonengine/arbor/extents"
	"github.com/akmonengine/arbor/geom"
	"github.com/akmonengine/arbor/inspect"
	"github.com/akmonengine/arbor/volume"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
)

type names map[string]struct{}

// unique returns a silly name not handed out before
func (n names) unique() string {
	for {
		name := randomdata.SillyName()
		if _, exists := n[name]; !exists {
			n[name] = struct{}{}
			return name
		}
	}
}

func main() {
	var configPath, gltfPath string
	var count, steps int
	var seed int64
	var serve bool
	flag.StringVar(&configPath, "config", "", "Path to a YAML config, defaults are used when empty")
	flag.StringVar(&gltfPath, "gltf", "", "glTF file whose first mesh shapes the crates")
	flag.IntVar(&count, "count", 24, "Number of wandering crates")
	flag.IntVar(&steps, "steps", 600, "Number of steps to simulate")
	flag.Int64Var(&seed, "seed", 1, "Random seed")
	flag.BoolVar(&serve, "serve", false, "Serve the inspector while simulating")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			logrus.Fatal(err)
		}
	}

	world := arbor.NewWorld(cfg)
	defer world.Close()
	log := world.Logger()

	r := rand.New(rand.NewSource(seed))
	randomdata.CustomRand(r)

	crate := volume.Volume(volume.NewAABB(volume.BoundsFromCenter(mgl64.Vec3{}, mgl64.Vec3{0.5, 0.5, 0.5})))
	if gltfPath != "" {
		meshes, err := extents.Load(gltfPath)
		if err != nil {
			log.Fatal(err)
		}
		if len(meshes) > 0 {
			crate = meshes[0].Volume(volume.KindOBB)
			log.WithField("mesh", meshes[0].Name).Info("crates fitted to mesh")
		}
	}

	bridge := ecs.NewBridge(world, donburi.NewWorld())
	var collisions int
	ecs.CollisionEventType.Subscribe(bridge.Donburi(), func(_ donburi.World, e ecs.CollisionEvent) {
		if e.Type == arbor.INTERSECTION_BEGIN {
			collisions++
		}
	})

	scene := buildScene(world, bridge, crate, r, count)

	var inspector *inspect.Inspector
	if serve {
		inspector = inspect.New(world)
		defer inspector.Close()
		go func() {
			if err := inspector.ListenAndServe(); err != nil {
				log.WithError(err).Error("inspector stopped")
			}
		}()
	}

	const dt = 1.0 / 60.0
	for step := 0; step < steps; step++ {
		world.Step(dt)
		ecs.CollisionEventType.ProcessEvents(bridge.Donburi())

		if step%60 == 0 {
			hit := world.Collisions.Raycast(geom.NewRay(mgl64.Vec3{-30, 0.5, 0}, mgl64.Vec3{1, 0, 0}))
			if hit.Target != nil {
				log.WithFields(logrus.Fields{
					"step":     step,
					"target":   hit.Target.Node().Name(),
					"distance": hit.Distance,
				}).Info("probe ray hit")
			}
			world.Touch(mgl64.Vec2{400, 300}, arbor.ScreencastDown)
		}
		if serve {
			time.Sleep(time.Second / 60)
		}
	}

	scene.Log()
	log.WithFields(logrus.Fields{
		"steps":      world.Steps(),
		"collisions": collisions,
		"tracked":    bridge.Len(),
	}).Info("simulation over")

	if inspector != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		inspector.Shutdown(ctx)
	}
}

// buildScene lays crates out on a ring, moving and turning, around a gate that tweens up and down.
func buildScene(world *arbor.World, bridge *ecs.Bridge, crate volume.Volume, r *rand.Rand, count int) *arbor.Node {
	log := world.Logger()
	n := names{}

	camera := arbor.NewPerspectiveCamera(800, 600)
	camera.Eye = mgl64.Vec3{0, 25, 25}
	world.SetActiveCamera(camera)

	scene := arbor.NewNode(world, "scene")

	gate := arbor.NewNode(world, "gate")
	gate.AddCollider("frame", volume.NewOBB(mgl64.Vec3{}, mgl64.Vec3{2, 2, 0.25})).
		OnScreencast(arbor.ScreencastDown, func(info arbor.CollisionInfo) {
			log.WithField("point", info.Point).Info("gate touched")
		})
	scene.AddChild(gate)
	tween := arbor.AddComponent[components.Tween](gate, components.TweenSettings{
		To:       mgl64.Vec3{0, 4, 0},
		Duration: 2,
		Ease:     ease.InOutQuad,
	})
	up := true
	tween.OnDone = func() {
		up = !up
		to := mgl64.Vec3{}
		if up {
			to = mgl64.Vec3{0, 4, 0}
		}
		tween.Start(components.TweenSettings{To: to, Duration: 2, Ease: ease.InOutQuad})
	}
	bridge.Track(gate)

	for i := 0; i < count; i++ {
		node := arbor.NewNode(world, n.unique())
		angle := 2 * math.Pi * float64(i) / float64(count)
		node.SetLocalTranslation(mgl64.Vec3{12 * math.Cos(angle), 0, 12 * math.Sin(angle)})
		node.SetLocalRotation(mgl64.QuatRotate(-angle, geom.AxisUp))
		scene.AddChild(node)

		c := node.AddCollider("body", crate.Clone())
		c.SetReceiveRaycasts(true)
		c.OnIntersectionBegin(func(info arbor.CollisionInfo) {
			log.WithFields(logrus.Fields{
				"crate": info.Source.Node().Name(),
				"other": info.Target.Node().Name(),
			}).Debug("crates met")
		})
		node.SetFrustumCollider(c)

		arbor.AddComponent[components.Mover](node, components.MoverSettings{
			ForwardSpeed: 1 + r.Float64()*3,
			YawRate:      r.Float64() - 0.5,
		})
		bridge.Track(node)
	}

	visible := 0
	scene.Traversal(func(node *arbor.Node) {
		if node.IsInFrustum(camera) {
			visible++
		}
	})
	log.WithField("visible", visible).Info("scene built")

	return scene
}
