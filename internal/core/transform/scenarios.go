// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package transform restructures a normalized ad analysis for generation.
// The opening scene is replaced with an extreme-hook scenario, a precomposed
// object-only visual built for shock value, while the remaining scenes keep
// their narrative beats. Scenario selection prefers the built-in table for
// the detected vertical, then falls through an ordered provider chain, so a
// creative-provider outage degrades to canned scenarios instead of failing.
package transform

// ScenarioSpec is one precomposed extreme-hook scenario. Every field maps
// directly onto the scripted hook fields of a scene.
type ScenarioSpec struct {
	Name          string `json:"name"`
	Visual        string `json:"visual"`
	Camera        string `json:"camera"`
	Emotion       string `json:"emotion"`
	TextOverlay   string `json:"text_overlay"`
	BeatBreakdown string `json:"beat_breakdown"`
	Audio         string `json:"audio"`
	Lighting      string `json:"lighting"`
	Kind          string `json:"kind"`
}

// builtinScenarios holds the hand-written hook scenarios, keyed by vertical.
// Verticals absent from this table go through the custom scenario providers.
var builtinScenarios = map[string][]ScenarioSpec{
	"auto_insurance": {
		{
			Name:          "Junkyard Magnet Drop",
			Visual:        "A car dangles under a massive crane magnet in a junkyard, swaying ominously. The magnet releases and the car drops in slow motion, crashing into a pile of scrap metal as dust and debris explode outward.",
			Camera:        "Wide establishing shot, tilt up to the dangling car, slow-motion drop, impact close-up",
			Emotion:       "shock, tension, relief",
			TextOverlay:   "If your car went today, would your insurance pay tomorrow?",
			BeatBreakdown: "0-4s: Car dangles and sways. 4-8s: Release and fall begins. 8-12s: Impact and aftermath.",
			Audio:         "Metal creaking, wind, cables releasing, crash boom, silence",
			Lighting:      "Dramatic overcast sky, harsh industrial lighting",
			Kind:          "shock_and_relief",
		},
		{
			Name:          "Runaway Shopping Cart",
			Visual:        "A supermarket parking lot on a slight incline. A wind gust nudges a shopping cart, it rolls and gains speed downhill, then slams into a parked luxury sedan.",
			Camera:        "Wide shot establishing the incline, tracking shot following the cart, close-up of impact",
			Emotion:       "anticipation, impact shock, dread",
			TextOverlay:   "One slip, one claim, one call away.",
			BeatBreakdown: "0-3s: Cart starts rolling. 3-8s: Cart gains speed. 8-12s: Impact and aftermath.",
			Audio:         "Cart wheels rattling, wind, speed whoosh, metal crash",
			Lighting:      "Sunny parking lot, clean bright aesthetic",
			Kind:          "shock_and_relief",
		},
		{
			Name:          "Pothole Impact",
			Visual:        "Dashcam view driving on a city street. A massive pothole hidden by water appears, the front tire slams into it, the frame shakes violently, the tire blows and the rim sparks against pavement.",
			Camera:        "Dashcam with violent shake effect, close-up of the tire damage",
			Emotion:       "sudden impact, costly damage",
			TextOverlay:   "One hole, $1,200 later. Or zero if you're covered.",
			BeatBreakdown: "0-3s: Normal driving. 3-5s: Pothole impact. 5-12s: Shaking, damage, aftermath.",
			Audio:         "Driving sounds, massive bang, metal scraping, deflating tire hiss",
			Lighting:      "Overcast city, harsh street lighting",
			Kind:          "everyday_chaos",
		},
	},
	"solar": {
		{
			Name:          "Bill Ignition",
			Visual:        "An electric bill lies on a kitchen table in afternoon sun. A magnifying glass concentrates light on the printed total until the paper smolders, catches, and the amount burns away to nothing.",
			Camera:        "Macro on the printed total, slow push-in as the paper smolders, top-down reveal of the burned hole",
			Emotion:       "tension, decisive relief",
			TextOverlay:   "Your bill is burning money every month.",
			BeatBreakdown: "0-4s: Bill and magnifying glass. 4-8s: Smoke curls up. 8-12s: Total burns away.",
			Audio:         "Quiet room tone, faint sizzle, paper crackle, whoosh of flame",
			Lighting:      "Warm afternoon sun shafts, high contrast macro highlights",
			Kind:          "money_burn",
		},
		{
			Name:          "Meter Spinning Backwards",
			Visual:        "A power meter on a suburban wall spins fast, numbers climbing, then rooftop panels glint in sunlight above it and the meter slows, stops, and crawls backwards.",
			Camera:        "Close-up on the spinning meter, tilt up to the roofline, return to the reversing dial",
			Emotion:       "anxiety turning to satisfaction",
			TextOverlay:   "What if it spun the other way?",
			BeatBreakdown: "0-4s: Meter spinning fast. 4-8s: Panels revealed. 8-12s: Meter reverses.",
			Audio:         "Electrical hum rising, a soft click, hum fading to birdsong",
			Lighting:      "Harsh midday glare softening to golden hour",
			Kind:          "curiosity",
		},
	},
}

// defaultScenarios cover any vertical with no table entry when every custom
// provider fails: generic money and urgency hooks safe for most offers.
var defaultScenarios = []ScenarioSpec{
	{
		Name:          "Cash Wind Tunnel",
		Visual:        "Banknotes swirl inside a glass chamber, whipping past the lens. A vent at the bottom drags them down one at a time into darkness until the chamber stands empty.",
		Camera:        "Slow orbit around the chamber, snap zoom on the last bill being pulled under",
		Emotion:       "urgency, loss",
		TextOverlay:   "Where does it all go every month?",
		BeatBreakdown: "0-4s: Bills swirl. 4-9s: Vent pulls them down. 9-12s: Empty chamber.",
		Audio:         "Rushing air, fluttering paper, a final hollow thud",
		Lighting:      "Cold studio key light, deep shadows behind the glass",
		Kind:          "money_burn",
	},
	{
		Name:          "Countdown Billboard",
		Visual:        "A digital billboard over an empty intersection at dusk counts down from ten. Streetlights flicker in sync with each tick. At zero the billboard cuts to black and the streets go dark.",
		Camera:        "Low angle push-in on the billboard, cutaways to flickering streetlights",
		Emotion:       "tension, urgency",
		TextOverlay:   "Offers end. Bills don't.",
		BeatBreakdown: "0-6s: Countdown ticks. 6-10s: Lights flicker faster. 10-12s: Blackout.",
		Audio:         "Deep clock ticks, electrical buzz, sudden silence",
		Lighting:      "Dusk blue hour, neon billboard glow",
		Kind:          "urgency",
	},
}

// BuiltinScenarios returns the canned scenario list for a vertical and
// whether the vertical has its own table entry.
func BuiltinScenarios(vertical string) ([]ScenarioSpec, bool) {
	s, ok := builtinScenarios[vertical]
	return s, ok
}

// DefaultScenarios returns the generic fallback scenario set.
func DefaultScenarios() []ScenarioSpec {
	out := make([]ScenarioSpec, len(defaultScenarios))
	copy(out, defaultScenarios)
	return out
}
