package mcp12306

// toolDef is one entry of the tools/list result. Input schemas are kept as
// plain maps so they serialize exactly as declared.
type toolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

var mcpTools = []toolDef{
	{
		Name:        "query-tickets",
		Description: "官方12306余票/车次/座席/时刻一站式查询。输入出发站、到达站、日期，返回所有可购车次、时刻、历时、各席别余票等详细信息。支持中文名、三字码。",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"from_station": map[string]any{"type": "string", "description": "出发车站名称，例如：北京、上海、广州", "minLength": 1},
				"to_station":   map[string]any{"type": "string", "description": "到达车站名称，例如：北京、上海、广州", "minLength": 1},
				"train_date":   map[string]any{"type": "string", "description": "出发日期，格式：YYYY-MM-DD", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			},
			"required":             []string{"from_station", "to_station", "train_date"},
			"additionalProperties": false,
		},
	},
	{
		Name:        "search-stations",
		Description: "智能模糊查站，支持中文名、拼音、简拼、三字码等多种方式，快速获取车站全名与三字码。",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "车站搜索关键词，支持：车站名称、拼音、简拼等", "minLength": 1, "maxLength": 20},
				"limit": map[string]any{"type": "integer", "description": "返回结果的最大数量", "minimum": 1, "maximum": 50, "default": 10},
			},
			"required":             []string{"query"},
			"additionalProperties": false,
		},
	},
	{
		Name:        "get-station-info",
		Description: "获取车站详细信息（名称、代码、拼音等）。输入车站名称或三字码，返回完整车站信息。",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "车站名称或三字码", "minLength": 1},
			},
			"required":             []string{"query"},
			"additionalProperties": false,
		},
	},
	{
		Name:        "query-transfer",
		Description: "中转换乘方案查询。输入出发站、到达站、日期，可选中转站/无座/学生票，自动枚举可行中转站并交叉比对两段余票，输出每段车次、时刻、余票、等候时间、总历时等详细信息。",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"from_station":   map[string]any{"type": "string", "description": "出发站"},
				"to_station":     map[string]any{"type": "string", "description": "到达站"},
				"train_date":     map[string]any{"type": "string", "description": "出发日期，格式：YYYY-MM-DD", "pattern": `^\d{4}-\d{2}-\d{2}$`},
				"middle_station": map[string]any{"type": "string", "description": "指定中转站名称或三字码，可选"},
				"isShowWZ":       map[string]any{"type": "string", "description": "Y=显示无座车次，N=不显示，默认N", "default": "N"},
				"purpose_codes":  map[string]any{"type": "string", "description": "00为普通，0X为学生，默认00"},
			},
			"required":             []string{"from_station", "to_station", "train_date"},
			"additionalProperties": false,
		},
	},
	{
		Name:        "get-train-route-stations",
		Description: "列车经停站全表查询。支持输入车次号或官方编号，自动转换，返回所有经停站、到发时刻、停留时间。支持三字码/全名。",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"train_no":     map[string]any{"type": "string", "description": "车次编码或车次号", "minLength": 1},
				"from_station": map[string]any{"type": "string", "description": "出发站", "minLength": 1},
				"to_station":   map[string]any{"type": "string", "description": "到达站", "minLength": 1},
				"train_date":   map[string]any{"type": "string", "description": "出发日期，格式：YYYY-MM-DD", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			},
			"required":             []string{"train_no", "from_station", "to_station", "train_date"},
			"additionalProperties": false,
		},
	},
	{
		Name:        "get-train-no-by-train-code",
		Description: "车次号转官方唯一编号（train_no），支持三字码/全名。常用于经停站查询前置转换。",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"train_code":   map[string]any{"type": "string", "description": "车次号", "minLength": 1},
				"from_station": map[string]any{"type": "string", "description": "出发站id或全名", "minLength": 1},
				"to_station":   map[string]any{"type": "string", "description": "到达站id或全名", "minLength": 1},
				"train_date":   map[string]any{"type": "string", "description": "出发日期，格式：YYYY-MM-DD", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			},
			"required":             []string{"train_code", "from_station", "to_station", "train_date"},
			"additionalProperties": false,
		},
	},
	{
		Name:        "get-current-time",
		Description: "获取当前日期和时间信息，支持相对日期计算。返回当前日期、时间，以及常用的相对日期（明天、后天等），方便查询火车票时选择正确的日期。",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"timezone": map[string]any{"type": "string", "description": "时区设置，默认为中国时区", "default": "Asia/Shanghai"},
				"format":   map[string]any{"type": "string", "description": "返回的日期格式，默认为YYYY-MM-DD", "default": "YYYY-MM-DD"},
			},
			"additionalProperties": false,
		},
	},
}

func toolNames() []string {
	names := make([]string, 0, len(mcpTools))
	for _, t := range mcpTools {
		names = append(names, t.Name)
	}
	return names
}
