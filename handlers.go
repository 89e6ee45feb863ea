package mcp12306

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/drfccv/mcp-server-12306/station"
	"github.com/drfccv/mcp-server-12306/transfer"
)

var validate = validator.New()

// contentItem is one MCP tool-result content block.
type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolResult struct {
	Content []contentItem `json:"content"`
	IsError bool          `json:"isError"`
}

// textResult marshals a payload into the single text content block every
// tool returns.
func textResult(payload any) toolResult {
	b, err := json.Marshal(payload)
	if err != nil {
		return errorResult(fmt.Sprintf("响应序列化失败: %v", err))
	}
	return toolResult{Content: []contentItem{{Type: "text", Text: string(b)}}}
}

// failure builds a {success:false, error} payload; these count as successful
// tool executions at the envelope level.
func failure(msg string) toolResult {
	return textResult(map[string]any{"success": false, "error": msg})
}

// errorResult marks the whole tool execution failed.
func errorResult(msg string) toolResult {
	return toolResult{
		Content: []contentItem{{Type: "text", Text: fmt.Sprintf(`{"success": false, "error": %q}`, msg)}},
		IsError: true,
	}
}

// CallTool dispatches one tools/call invocation by name.
func (s *Server) CallTool(ctx context.Context, name string, args json.RawMessage) toolResult {
	var res toolResult
	switch name {
	case "query-tickets":
		res = s.handleQueryTickets(ctx, args)
	case "search-stations":
		res = s.handleSearchStations(args)
	case "get-station-info":
		res = s.handleStationInfo(args)
	case "query-transfer":
		res = s.handleQueryTransfer(ctx, args)
	case "get-train-route-stations":
		res = s.handleRouteStations(ctx, args)
	case "get-train-no-by-train-code":
		res = s.handleTrainNo(ctx, args)
	case "get-current-time":
		res = s.handleCurrentTime(args)
	default:
		res = errorResult("未知工具: " + name)
	}
	observeToolCall(name, res.IsError)
	return res
}

// resolveStation resolves a user token (telecode or fuzzy name) against the
// live index.
func (s *Server) resolveStation(token string) (station.Station, error) {
	idx, err := s.stations.Current()
	if err != nil {
		return station.Station{}, err
	}
	st, ok := idx.Resolve(token)
	if !ok {
		return station.Station{}, fmt.Errorf("%w: %q", station.ErrStationNotFound, token)
	}
	return st, nil
}

func decodeArgs(args json.RawMessage, into any) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, into); err != nil {
		return fmt.Errorf("参数解析失败: %w", err)
	}
	if err := validate.Struct(into); err != nil {
		return fmt.Errorf("参数校验失败: %w", err)
	}
	return nil
}

type queryTicketsArgs struct {
	FromStation string `json:"from_station" validate:"required"`
	ToStation   string `json:"to_station" validate:"required"`
	TrainDate   string `json:"train_date" validate:"required"`
}

func (s *Server) handleQueryTickets(ctx context.Context, args json.RawMessage) toolResult {
	var a queryTicketsArgs
	if err := decodeArgs(args, &a); err != nil {
		return failure(err.Error())
	}
	if !ValidateDate(a.TrainDate) {
		return failure("日期格式错误，请使用 YYYY-MM-DD 格式")
	}
	from, err := s.resolveStation(a.FromStation)
	if err != nil {
		return s.stationFailure(err, "from", a.FromStation)
	}
	to, err := s.resolveStation(a.ToStation)
	if err != nil {
		return s.stationFailure(err, "to", a.ToStation)
	}
	legs, err := s.tickets.QueryLeftTickets(ctx, from.Code, to.Code, a.TrainDate, "")
	if err != nil {
		log.Printf("query-tickets upstream failure: %v", err)
		return failure("12306接口查询失败，请稍后重试")
	}
	trains := make([]trainPayload, 0, len(legs))
	for _, leg := range legs {
		trains = append(trains, renderTrain(leg))
	}
	if len(trains) == 0 {
		return textResult(map[string]any{
			"success":      false,
			"from_station": from.Name,
			"to_station":   to.Name,
			"train_date":   a.TrainDate,
			"count":        0,
			"trains":       []trainPayload{},
			"message":      "未找到该线路的余票",
		})
	}
	return textResult(map[string]any{
		"success":      true,
		"from_station": from.Name,
		"to_station":   to.Name,
		"train_date":   a.TrainDate,
		"count":        len(trains),
		"trains":       trains,
	})
}

// stationFailure renders an unresolvable station token, attaching fuzzy
// suggestions when the index can offer any.
func (s *Server) stationFailure(err error, stationType, input string) toolResult {
	if errors.Is(err, station.ErrDataUnavailable) {
		return errorResult("车站数据未加载，服务暂不可用")
	}
	payload := map[string]any{
		"success": false,
		"error":   fmt.Sprintf("车站无效或无法识别：%s", input),
		"hint":    "可尝试拼音、简拼、三字码或用 search-stations 工具辅助查询",
	}
	if idx, idxErr := s.stations.Current(); idxErr == nil {
		if matches := idx.Search(input, 3); len(matches) > 0 {
			suggestions := make([]stationPayload, 0, len(matches))
			for _, m := range matches {
				suggestions = append(suggestions, renderStation(m))
			}
			payload["suggestions"] = []map[string]any{{
				"station_type": stationType,
				"input":        input,
				"matches":      suggestions,
			}}
		}
	}
	return textResult(payload)
}

type searchStationsArgs struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit"`
}

func (s *Server) handleSearchStations(args json.RawMessage) toolResult {
	var a searchStationsArgs
	if err := decodeArgs(args, &a); err != nil {
		return failure("请输入搜索关键词")
	}
	if a.Limit < 1 || a.Limit > 50 {
		a.Limit = 10
	}
	idx, err := s.stations.Current()
	if err != nil {
		return errorResult("车站数据未加载，服务暂不可用")
	}
	matches := idx.Search(a.Query, a.Limit)
	if len(matches) == 0 {
		return textResult(map[string]any{
			"success":  false,
			"query":    a.Query,
			"count":    0,
			"stations": []stationPayload{},
			"message":  "未找到匹配的车站",
			"suggestions": []string{
				"尝试完整城市名称 (如: 北京)",
				"尝试拼音 (如: beijing)",
				"尝试简拼 (如: bj)",
				"检查拼写是否正确",
			},
		})
	}
	stations := make([]stationPayload, 0, len(matches))
	for _, m := range matches {
		stations = append(stations, renderStation(m))
	}
	return textResult(map[string]any{
		"success":  true,
		"query":    a.Query,
		"count":    len(stations),
		"stations": stations,
	})
}

type stationInfoArgs struct {
	Query string `json:"query" validate:"required"`
}

func (s *Server) handleStationInfo(args json.RawMessage) toolResult {
	var a stationInfoArgs
	if err := decodeArgs(args, &a); err != nil {
		return failure("请输入车站名称或代码")
	}
	st, err := s.resolveStation(a.Query)
	if err != nil {
		if errors.Is(err, station.ErrDataUnavailable) {
			return errorResult("车站数据未加载，服务暂不可用")
		}
		return textResult(map[string]any{
			"success":    false,
			"query":      a.Query,
			"error":      "未找到该车站",
			"suggestion": "请使用 search-stations 工具进行模糊搜索",
		})
	}
	return textResult(map[string]any{
		"success": true,
		"station": renderStation(st),
	})
}

type queryTransferArgs struct {
	FromStation   string `json:"from_station" validate:"required"`
	ToStation     string `json:"to_station" validate:"required"`
	TrainDate     string `json:"train_date" validate:"required"`
	MiddleStation string `json:"middle_station"`
	IsShowWZ      string `json:"isShowWZ"`
	PurposeCodes  string `json:"purpose_codes"`
}

func (s *Server) handleQueryTransfer(ctx context.Context, args json.RawMessage) toolResult {
	var a queryTransferArgs
	if err := decodeArgs(args, &a); err != nil {
		return failure("请输入出发站、到达站和出发日期")
	}
	if !ValidateDate(a.TrainDate) {
		return failure("出发日期格式错误，应为YYYY-MM-DD")
	}
	if DateInPast(a.TrainDate) {
		return failure("出发日期不能早于今天")
	}
	purpose := strings.ToUpper(strings.TrimSpace(a.PurposeCodes))
	if purpose == "" {
		purpose = "00"
	}
	res, err := s.engine.Plan(ctx, transfer.Request{
		From:         strings.TrimSpace(a.FromStation),
		To:           strings.TrimSpace(a.ToStation),
		TrainDate:    a.TrainDate,
		Middle:       strings.TrimSpace(a.MiddleStation),
		PurposeCodes: purpose,
		ShowStanding: strings.EqualFold(strings.TrimSpace(a.IsShowWZ), "Y"),
	})
	if err != nil {
		switch {
		case errors.Is(err, station.ErrStationNotFound):
			return failure(err.Error())
		case errors.Is(err, station.ErrDataUnavailable):
			return errorResult("车站数据未加载，服务暂不可用")
		default:
			log.Printf("query-transfer failed: %v", err)
			return errorResult("查询中转失败")
		}
	}
	return textResult(renderTransferResult(res))
}

var trainCodePattern = regexp.MustCompile(`^[A-Z]+\d+$`)

type routeStationsArgs struct {
	TrainNo     string `json:"train_no" validate:"required"`
	FromStation string `json:"from_station" validate:"required"`
	ToStation   string `json:"to_station" validate:"required"`
	TrainDate   string `json:"train_date" validate:"required"`
}

func (s *Server) handleRouteStations(ctx context.Context, args json.RawMessage) toolResult {
	var a routeStationsArgs
	if err := decodeArgs(args, &a); err != nil {
		return failure(err.Error())
	}
	if !ValidateDate(a.TrainDate) {
		return failure("出发日期格式错误，应为YYYY-MM-DD")
	}
	if DateInPast(a.TrainDate) {
		return failure("出发日期不能早于今天")
	}
	from, err := s.resolveStation(a.FromStation)
	if err != nil {
		return s.stationFailure(err, "from", a.FromStation)
	}
	to, err := s.resolveStation(a.ToStation)
	if err != nil {
		return s.stationFailure(err, "to", a.ToStation)
	}

	trainNo := strings.TrimSpace(a.TrainNo)
	if trainCodePattern.MatchString(strings.ToUpper(trainNo)) {
		// Public train code, not the official number: convert first.
		resolved, _, err := s.rail.ResolveTrainNo(ctx, trainNo, from.Code, to.Code, a.TrainDate)
		if err != nil {
			log.Printf("train-no conversion upstream failure: %v", err)
			return failure("12306接口查询失败，请稍后重试")
		}
		if resolved == "" {
			return failure(fmt.Sprintf("无法获取车次 %s 的列车编号", trainNo))
		}
		trainNo = resolved
	}

	stops, err := s.rail.QueryRouteStations(ctx, trainNo, from.Code, to.Code, a.TrainDate)
	if err != nil {
		log.Printf("route-stations upstream failure: %v", err)
		return failure("12306接口查询失败，请稍后重试")
	}
	if len(stops) == 0 {
		return textResult(map[string]any{
			"success":  false,
			"train_no": a.TrainNo,
			"error":    "未找到经停站信息",
		})
	}
	return textResult(map[string]any{
		"success":    true,
		"train_no":   a.TrainNo,
		"train_date": a.TrainDate,
		"count":      len(stops),
		"stations":   renderRouteStops(stops),
	})
}

type trainNoArgs struct {
	TrainCode   string `json:"train_code" validate:"required"`
	FromStation string `json:"from_station" validate:"required"`
	ToStation   string `json:"to_station" validate:"required"`
	TrainDate   string `json:"train_date" validate:"required"`
}

func (s *Server) handleTrainNo(ctx context.Context, args json.RawMessage) toolResult {
	var a trainNoArgs
	if err := decodeArgs(args, &a); err != nil {
		return failure(err.Error())
	}
	if !ValidateDate(a.TrainDate) {
		return failure("出发日期格式错误，应为YYYY-MM-DD")
	}
	if DateInPast(a.TrainDate) {
		return failure("出发日期不能早于今天")
	}
	from, err := s.resolveStation(a.FromStation)
	if err != nil {
		return s.stationFailure(err, "from", a.FromStation)
	}
	to, err := s.resolveStation(a.ToStation)
	if err != nil {
		return s.stationFailure(err, "to", a.ToStation)
	}
	code := strings.ToUpper(strings.TrimSpace(a.TrainCode))
	trainNo, available, err := s.rail.ResolveTrainNo(ctx, code, from.Code, to.Code, a.TrainDate)
	if err != nil {
		log.Printf("train-no resolution upstream failure: %v", err)
		return failure("12306接口查询失败，请稍后重试")
	}
	if trainNo == "" {
		return textResult(map[string]any{
			"success":          false,
			"train_code":       code,
			"from_station":     from.Code,
			"to_station":       to.Code,
			"train_date":       a.TrainDate,
			"error":            "未找到该车次号的列车编号",
			"available_trains": available,
		})
	}
	return textResult(map[string]any{
		"success":      true,
		"train_code":   code,
		"train_no":     trainNo,
		"from_station": from.Code,
		"to_station":   to.Code,
		"train_date":   a.TrainDate,
	})
}

type currentTimeArgs struct {
	Timezone string `json:"timezone"`
	Format   string `json:"format"`
}

func (s *Server) handleCurrentTime(args json.RawMessage) toolResult {
	var a currentTimeArgs
	if err := decodeArgs(args, &a); err != nil {
		return failure(err.Error())
	}
	return textResult(currentTime(a.Timezone))
}
