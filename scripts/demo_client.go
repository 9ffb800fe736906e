// Package main runs a demo client against a local API: it optimizes a small
// order, compares two strategies and reads the run back from the run log.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

const demoWarehouse = `{"name":"demo","rows":10,"cols":12,"start":[0,0],
	"blocked":[[2,3],[3,3],[4,3],[5,3],[2,8],[3,8],[4,8],[5,8]],
	"locations":{"A-1":[1,4],"A-2":[4,5],"B-1":[6,9],"B-2":[8,2],"C-1":[3,11],"C-2":[9,10]}}`

const demoOrder = `[{"sku":"SKU-001","locationId":"A-1"},{"sku":"SKU-002","locationId":"B-1"},
	{"sku":"SKU-003","locationId":"C-2"},{"sku":"SKU-004","locationId":"B-2"},
	{"sku":"SKU-005","locationId":"A-2"},{"sku":"SKU-404","locationId":"Z-9"}]`

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	var res struct {
		DistanceMeters float64 `json:"distanceMeters"`
		TimeSeconds    int     `json:"timeSeconds"`
		Efficiency     int     `json:"efficiency"`
		Stops          []struct {
			LocationID string `json:"locationId"`
		} `json:"stops"`
	}
	body := `{"warehouse":` + demoWarehouse + `,"order":` + demoOrder + `,"params":{"strategy":"zone_cluster","twoOpt":true}}`
	postJSON(base+"/v1/optimize", body, &res)
	log.Printf("optimize: %d stops, %.1fm, %ds, efficiency %d%%", len(res.Stops), res.DistanceMeters, res.TimeSeconds, res.Efficiency)

	var cmp struct {
		Delta struct {
			DistanceDelta      float64 `json:"distanceDelta"`
			PercentImprovement float64 `json:"percentImprovement"`
		} `json:"delta"`
	}
	body = `{"warehouse":` + demoWarehouse + `,"order":` + demoOrder +
		`,"scenarioA":{"strategy":"nearest"},"scenarioB":{"strategy":"nearest","twoOpt":true}}`
	postJSON(base+"/v1/compare", body, &cmp)
	log.Printf("compare: distance delta %.1fm (%.1f%%)", cmp.Delta.DistanceDelta, cmp.Delta.PercentImprovement)

	resp, err := http.Get(base + "/v1/runs?limit=2")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, _ := io.ReadAll(resp.Body)
	log.Printf("runs: %s", b)
}

func postJSON(url, body string, out any) {
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		log.Fatalf("%s: %d %s", url, resp.StatusCode, b)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Fatal(err)
	}
}
