// Package soil looks up point soil properties from SoilGrids. Lookups never
// fail: any upstream problem degrades to a location-derived estimate.
package soil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"krishimitra/models"
)

const DefaultBaseURL = "https://rest.isric.org/soilgrids/v2.0"

var (
	queryProperties = []string{"nitrogen", "phh2o", "soc", "clay", "sand", "silt"}
	queryDepths     = []string{"0-5cm", "5-15cm"}
)

// UpstreamError reports a failed SoilGrids call. It is logged, not returned
// to API callers.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return "soilgrids " + e.Op + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// Client calls the SoilGrids properties API with a bounded timeout and no
// retry.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// Lookup returns soil properties at the given point.
func (c *Client) Lookup(ctx context.Context, lat, lon float64) models.SoilProfile {
	p, err := c.fetch(ctx, lat, lon)
	if err != nil {
		log.Printf("soil lookup (%.4f, %.4f): %v; using fallback", lat, lon, err)
		p = FallbackProfile(lat, lon)
	}
	p.LastUpdated = c.now().UTC()
	q := Quality(p)
	p.Quality = &q
	return p
}

// SoilGrids /properties/query response, trimmed to what we read.
type queryResp struct {
	Properties struct {
		Layers []struct {
			Name   string `json:"name"`
			Depths []struct {
				Label  string              `json:"label"`
				Values map[string]*float64 `json:"values"`
			} `json:"depths"`
		} `json:"layers"`
	} `json:"properties"`
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (models.SoilProfile, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	for _, p := range queryProperties {
		q.Add("property", p)
	}
	for _, d := range queryDepths {
		q.Add("depth", d)
	}
	q.Add("value", "Q0.5")
	q.Add("value", "mean")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/properties/query?"+q.Encode(), nil)
	if err != nil {
		return models.SoilProfile{}, &UpstreamError{Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.SoilProfile{}, &UpstreamError{Op: "call", Err: err}
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.SoilProfile{}, &UpstreamError{Op: "call", Err: fmt.Errorf("non-2xx: %s", resp.Status)}
	}

	var out queryResp
	if err := json.Unmarshal(data, &out); err != nil {
		return models.SoilProfile{}, &UpstreamError{Op: "decode", Err: err}
	}
	if len(out.Properties.Layers) == 0 {
		return models.SoilProfile{}, &UpstreamError{Op: "decode", Err: fmt.Errorf("no layers in response")}
	}

	// Top-soil median, falling back to the mean.
	value := func(name string) *float64 {
		for _, l := range out.Properties.Layers {
			if l.Name != name {
				continue
			}
			for _, d := range l.Depths {
				if d.Label != "0-5cm" {
					continue
				}
				if v := d.Values["Q0.5"]; v != nil {
					return v
				}
				return d.Values["mean"]
			}
		}
		return nil
	}

	// SoilGrids units: nitrogen cg/kg, pH*10, soc dg/kg, texture g/kg.
	p := models.SoilProfile{
		Source:     "soilgrids",
		Nitrogen:   models.DefaultNitrogen,
		Phosphorus: models.DefaultPhosphorus, // not provided by SoilGrids
		Potassium:  35,                       // not provided by SoilGrids
		PH:         models.DefaultPH,
		Drainage:   "Moderate",
		Depth:      "Deep",
		Erosion:    "Low",
		Latitude:   lat,
		Longitude:  lon,
		IsRealData: true,
	}
	if v := value("nitrogen"); v != nil && *v != 0 {
		p.Nitrogen = math.Round(*v / 10)
	}
	if v := value("phh2o"); v != nil && *v != 0 {
		p.PH = round(*v/10, 2)
	}
	p.OrganicCarbon = scaled(value("soc"), 2)
	p.Clay = scaled(value("clay"), 1)
	p.Sand = scaled(value("sand"), 1)
	p.Silt = scaled(value("silt"), 1)

	p.Texture = Texture(orDefault(p.Clay, 33), orDefault(p.Sand, 33), orDefault(p.Silt, 34))
	p.SoilType = p.Texture
	return p, nil
}

// FallbackProfile estimates soil properties from the coordinates alone. It
// is deterministic, so repeated lookups at one point agree.
func FallbackProfile(lat, lon float64) models.SoilProfile {
	latVar := math.Abs(math.Mod(lat, 10))
	lonVar := math.Abs(math.Mod(lon, 10))

	oc := 1.5
	soilType := "Clay Loam"
	if lat > 20 {
		soilType = "Loam"
	}
	return models.SoilProfile{
		Source:        "soilgrids",
		Nitrogen:      math.Round(40 + latVar*2),
		Phosphorus:    math.Round(29 + lonVar*2),
		Potassium:     math.Round(40 + (latVar+lonVar)/2*2),
		PH:            round(6.25+latVar/10, 2),
		OrganicCarbon: &oc,
		Texture:       "Medium",
		SoilType:      soilType,
		Drainage:      "Moderate",
		Depth:         "Deep",
		Erosion:       "Low",
		Latitude:      lat,
		Longitude:     lon,
		IsFallback:    true,
	}
}

// Texture classifies soil from clay/sand/silt percentages.
func Texture(clay, sand, silt float64) string {
	switch {
	case clay > 40:
		return "Clay"
	case clay > 27 && sand < 45:
		return "Clay Loam"
	case clay > 20 && sand > 45:
		return "Sandy Clay"
	case sand > 85:
		return "Sand"
	case sand > 70 && clay < 15:
		return "Loamy Sand"
	case sand > 50 && clay < 20:
		return "Sandy Loam"
	case silt > 80:
		return "Silt"
	case silt > 50 && clay < 27:
		return "Silt Loam"
	default:
		return "Loam"
	}
}

// Quality scores how much of the profile came from measured data.
func Quality(p models.SoilProfile) models.DataQuality {
	q := models.DataQuality{Sources: []string{}}
	switch {
	case p.IsRealData:
		q.Score = 50
		q.Sources = append(q.Sources, "SoilGrids (Global Database)")
	case p.IsFallback:
		q.Score = 20
		q.Sources = append(q.Sources, "SoilGrids (Estimated)")
	}

	switch {
	case q.Score >= 80:
		q.Level = "Excellent"
	case q.Score >= 50:
		q.Level = "Good"
	case q.Score >= 20:
		q.Level = "Fair"
	default:
		q.Level = "Low"
	}

	if q.Score < 50 {
		q.Recommendation = "Data quality is limited. Add IoT sensors for real-time soil monitoring or conduct soil testing for accurate NPK values"
	} else {
		q.Recommendation = "Data quality is good for agricultural planning"
	}
	return q
}

func scaled(v *float64, places int) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	r := round(*v/10, places)
	return &r
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
