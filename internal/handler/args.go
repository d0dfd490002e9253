package handler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"lucky-draw/internal/service"
)

// parseKV splits "key=value" arguments. Values cannot contain spaces, so
// express_name and express_time take '_' in place of a space.
func parseKV(args []string) (map[string]string, error) {
	kv := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("❌ 参数格式错误: %s (应为 key=value)", a)
		}
		kv[strings.ToLower(k)] = v
	}
	return kv, nil
}

// parseRecordID parses the leading record id argument.
func parseRecordID(args []string, usage string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("❌ 用法: %s", usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("❌ 记录ID格式错误，请输入数字")
	}
	return id, nil
}

// parsePage parses an optional page argument, defaulting to 1.
func parsePage(args []string) int {
	if len(args) == 0 {
		return 1
	}
	p, err := strconv.Atoi(args[0])
	if err != nil || p < 1 {
		return 1
	}
	return p
}

// commandBody returns the message text after the leading command token.
// Unlike the bot's payload it keeps every line.
func commandBody(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i:])
}

// parseTierLines reads one tier per line:
//
//	name | goods_type | day_max | min_range | max_range | image_url
//
// Blank lines are skipped.
func parseTierLines(payload string) ([]service.TierInput, error) {
	var inputs []service.TierInput
	for n, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != 6 {
			return nil, fmt.Errorf("❌ 第 %d 行应有 6 个字段，实际 %d 个", n+1, len(parts))
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		nums := make([]int64, 3)
		for i, s := range parts[2:5] {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("❌ 第 %d 行数字格式错误: %s", n+1, s)
			}
			nums[i] = v
		}
		inputs = append(inputs, service.TierInput{
			GoodsName: parts[0],
			GoodsType: parts[1],
			DayMax:    nums[0],
			MinRange:  nums[1],
			MaxRange:  nums[2],
			ImageURL:  parts[5],
		})
	}
	return inputs, nil
}

// proofFromKV maps /send arguments to a proof.
func proofFromKV(kv map[string]string) service.ProofInput {
	return service.ProofInput{
		Channel:     kv["channel"],
		SN:          kv["sn"],
		ExpressName: strings.ReplaceAll(kv["express_name"], "_", " "),
		ExpressSN:   kv["express_sn"],
		ExpressTime: strings.Replace(kv["express_time"], "_", " ", 1),
	}
}

// adminQueryFromKV maps /records arguments to a query.
func adminQueryFromKV(kv map[string]string) (service.AdminQuery, error) {
	q := service.AdminQuery{
		Username:    strings.TrimPrefix(kv["username"], "@"),
		Mobilephone: kv["mobilephone"],
		GoodsName:   kv["goods_name"],
		GoodsType:   kv["goods_type"],
	}
	if p, ok := kv["page"]; ok {
		v, err := strconv.Atoi(p)
		if err != nil || v < 1 {
			return q, fmt.Errorf("❌ 页码格式错误")
		}
		q.Page = v
	}
	return q, nil
}
