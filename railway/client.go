package railway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/drfccv/mcp-server-12306/config"
)

const (
	initPath       = "/otn/leftTicket/init"
	leftTicketPath = "/otn/leftTicket/queryG"
	trainRoutePath = "/otn/czxx/queryByTrainNo"
)

// Client queries the public 12306 endpoints. It keeps a cookie jar because
// the query endpoints reject requests without the session cookies handed out
// by the left-ticket init page.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxRetries int
}

// NewClient creates a 12306 client from configuration.
func NewClient(cfg config.RailwayConfig) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
			Jar:     jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}
}

func (c *Client) newRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.baseURL+initPath)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return req, nil
}

// warmSession fetches the init page so the jar holds fresh session cookies.
func (c *Client) warmSession(ctx context.Context) {
	req, err := c.newRequest(ctx, initPath, nil)
	if err != nil {
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// getJSON performs a query with bounded retries on transport errors. Redirects
// and non-200 responses are treated as the upstream's anti-crawler gate and
// are not retried.
func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &UpstreamError{Op: op, Err: ctx.Err()}
			case <-time.After(time.Second):
			}
		}
		c.warmSession(ctx)
		req, err := c.newRequest(ctx, path, params)
		if err != nil {
			return &UpstreamError{Op: op, Err: err}
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return &UpstreamError{Op: op, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
		}
		if err := json.Unmarshal(body, out); err != nil {
			return &UpstreamError{Op: op, Err: fmt.Errorf("unparseable response (anti-crawler gate?): %w", err)}
		}
		upstreamRequests.WithLabelValues(op, "ok").Inc()
		return nil
	}
	upstreamRequests.WithLabelValues(op, "error").Inc()
	return &UpstreamError{Op: op, Err: fmt.Errorf("request failed after %d attempts: %w", c.maxRetries, lastErr)}
}

type leftTicketResponse struct {
	Data struct {
		Result []string          `json:"result"`
		Map    map[string]string `json:"map"`
	} `json:"data"`
}

func (c *Client) queryLeftTicketRaw(ctx context.Context, fromCode, toCode, date, purposeCodes string) (*leftTicketResponse, error) {
	if purposeCodes == "" {
		purposeCodes = "ADULT"
	}
	params := url.Values{}
	params.Set("leftTicketDTO.train_date", date)
	params.Set("leftTicketDTO.from_station", fromCode)
	params.Set("leftTicketDTO.to_station", toCode)
	params.Set("purpose_codes", purposeCodes)
	var out leftTicketResponse
	if err := c.getJSON(ctx, "leftTicket", leftTicketPath, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryLeftTickets returns the direct trains between two telecodes on the
// given date. An empty result is a valid answer, not an error.
func (c *Client) QueryLeftTickets(ctx context.Context, fromCode, toCode, date, purposeCodes string) ([]TrainLeg, error) {
	resp, err := c.queryLeftTicketRaw(ctx, fromCode, toCode, date, purposeCodes)
	if err != nil {
		return nil, err
	}
	return parseTicketStrings(resp.Data.Result, resp.Data.Map), nil
}

// ResolveTrainNo resolves a public train code (e.g. G1014) to the official
// unique train_no via the left-ticket listing. When the code is not found the
// codes that were available are returned for the caller's error message.
func (c *Client) ResolveTrainNo(ctx context.Context, trainCode, fromCode, toCode, date string) (string, []string, error) {
	resp, err := c.queryLeftTicketRaw(ctx, fromCode, toCode, date, "")
	if err != nil {
		return "", nil, err
	}
	trainCode = strings.ToUpper(strings.TrimSpace(trainCode))
	var available []string
	for _, ticket := range resp.Data.Result {
		parts := strings.Split(ticket, "|")
		if len(parts) < 4 {
			continue
		}
		code := strings.ToUpper(parts[3])
		available = append(available, code)
		if code == trainCode {
			return parts[2], nil, nil
		}
	}
	return "", available, nil
}

type trainRouteResponse struct {
	Data json.RawMessage `json:"data"`
}

// QueryRouteStations returns the stop-by-stop schedule of a train. The
// endpoint has shipped several response shapes over time; all known ones are
// accepted.
func (c *Client) QueryRouteStations(ctx context.Context, trainNo, fromCode, toCode, date string) ([]RouteStop, error) {
	params := url.Values{}
	params.Set("train_no", trainNo)
	params.Set("from_station_telecode", fromCode)
	params.Set("to_station_telecode", toCode)
	params.Set("depart_date", date)
	var out trainRouteResponse
	if err := c.getJSON(ctx, "trainRoute", trainRoutePath, params, &out); err != nil {
		return nil, err
	}
	return parseRouteStops(out.Data)
}

// parseRouteStops extracts stops from the variously shaped payloads the
// route endpoint returns: data.data, data.fullList, data.route, or
// data.middleList[].fullList.
func parseRouteStops(raw json.RawMessage) ([]RouteStop, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var shape struct {
		Data       []routeStopRecord `json:"data"`
		FullList   []routeStopRecord `json:"fullList"`
		Route      []routeStopRecord `json:"route"`
		MiddleList []struct {
			FullList []routeStopRecord `json:"fullList"`
		} `json:"middleList"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, &UpstreamError{Op: "trainRoute", Err: fmt.Errorf("unexpected payload: %w", err)}
	}
	records := shape.Data
	if len(records) == 0 {
		records = shape.FullList
	}
	if len(records) == 0 {
		records = shape.Route
	}
	if len(records) == 0 {
		for _, m := range shape.MiddleList {
			records = append(records, m.FullList...)
		}
	}
	stops := make([]RouteStop, 0, len(records))
	for _, r := range records {
		stops = append(stops, r.toStop())
	}
	return stops, nil
}

type routeStopRecord struct {
	StationNo       string `json:"station_no"`
	FromStationNo   string `json:"from_station_no"`
	StationName     string `json:"station_name"`
	FromStationName string `json:"from_station_name"`
	ArriveTime      string `json:"arrive_time"`
	StartTime       string `json:"start_time"`
	StopoverTime    string `json:"stopover_time"`
}

func (r routeStopRecord) toStop() RouteStop {
	s := RouteStop{
		StationNo:    r.StationNo,
		StationName:  r.StationName,
		ArriveTime:   orDash(r.ArriveTime),
		StartTime:    orDash(r.StartTime),
		StopoverTime: orDash(r.StopoverTime),
	}
	if s.StationNo == "" {
		s.StationNo = r.FromStationNo
	}
	if s.StationName == "" {
		s.StationName = r.FromStationName
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "----"
	}
	return s
}
