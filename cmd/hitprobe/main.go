package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/automoto/hitmarkers/network"
	"github.com/automoto/hitmarkers/shared/protocol"
)

func main() {
	address := flag.String("addr", "localhost:7373", "Server address")
	version := flag.String("version", "", "Client version sent in the join request")
	name := flag.String("name", "probe", "Player name")
	victim := flag.Uint("victim", 0, "Network id of the player to hit")
	weapon := flag.String("weapon", "weapon_xm1014", "Weapon reported with every pellet")
	pellets := flag.Int("pellets", 9, "Pellets per volley")
	dmg := flag.Int("damage", 12, "Damage per pellet")
	headshots := flag.Int("headshots", 1, "Pellets that hit the head")
	volleys := flag.Int("volleys", 3, "Number of volleys")
	interval := flag.Duration("interval", 700*time.Millisecond, "Delay between volleys")
	toggle := flag.Bool("toggle", false, "Toggle hit numbers before firing")
	flag.Parse()

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	client := network.NewClient()
	client.Connect(*address, *version, *name, false)
	defer client.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.WaitJoined(ctx); err != nil {
		log.Fatalf("[probe] %v", err)
	}

	if *toggle {
		if err := client.ToggleHits(); err != nil {
			log.Fatalf("[probe] toggle: %v", err)
		}
	}

	v := network.Volley{
		Victim:    *victim,
		Weapon:    *weapon,
		Pellets:   *pellets,
		Damage:    *dmg,
		Headshots: *headshots,
	}
	if v.Victim == 0 {
		// Nobody else to shoot: hit ourselves and watch the server drop it.
		v.Victim = uint(client.NetworkID())
	}

	for i := 0; i < *volleys; i++ {
		if err := client.SendVolley(v.Reports()); err != nil {
			log.Fatalf("[probe] volley %d: %v", i, err)
		}
		log.Printf("[probe] volley %d: %d pellets, expect %d", i, v.Pellets, v.Total())
		time.Sleep(*interval)

		for _, t := range client.DrainToggles() {
			log.Printf("[probe] hits toggled: enabled=%v denied=%v", t.Enabled, t.Denied)
		}
		if snap := client.LatestSnapshot(); snap != nil {
			digits := network.HitDigits(*snap)
			log.Printf("[probe] snapshot: %d entities, %d hit digits", len(*snap), len(digits))
		}
	}
}
