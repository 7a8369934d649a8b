/*
Package landmark prepares training and evaluation samples for a 68 point facial
landmark detector. It keeps an image and its two landmark labels in agreement while
applying random rotation, horizontal flip and pixel noise, and encodes the model label
either as per-landmark heatmaps (classifier mode) or as scaled coordinates (regressor mode).

Two labels travel with every image:

  - the ground-truth label holds full resolution pixel coordinates;
  - the model label holds the same points scaled to the model coordinate space
    (a quarter of the image size in classifier mode).

A minimal example of building a training sample:

	package main

	import (
		"math/rand"

		landmark "github.com/llooww10120/2d-landmark-detection"
	)

	func main() {
		cfg := landmark.DefaultConfig()
		tr, err := landmark.NewTransform(cfg, true)
		if err != nil {
			panic(err)
		}
		ok, label, err := landmark.ConvertLabel(raw, cfg.Mode())
		if err != nil || !ok {
			return
		}
		rng := rand.New(rand.NewSource(cfg.Seed))
		tensor, label, gt, err := tr.Apply(rng, img, label, raw)
		...
		heatmap, err := landmark.EncodeHeatmap(label, cfg.Heatmap.GridSize)
	}
*/
package landmark
