// Package heroes holds the hero catalog used to tag crosshair configurations.
//
// The slug is the canonical identifier. Display names are lookup aliases:
// legacy rows may store either form, so filters expand an input into every
// identifier variant and match any of them.
package heroes

// Hero describes one entry of the catalog.
type Hero struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// Catalog lists every hero a crosshair can be tagged with, "general" first.
var Catalog = []Hero{
	{Slug: "general", Name: "通用", Role: "全角色", Description: "适用于绝大多数英雄或训练场景的通用准星，专注基础稳定性。"},
	{Slug: "genji", Name: "源氏", Role: "输出", Description: "高机动近身刺客，需要在突进时保持清晰视野。"},
	{Slug: "widowmaker", Name: "黑百合", Role: "输出", Description: "远程狙击手，讲究精确对点与最小遮挡。"},
	{Slug: "doomfist", Name: "末日铁拳", Role: "重装", Description: "依靠技能连招突进，需要广阔视野定位目标。"},
	{Slug: "ashe", Name: "艾什", Role: "输出", Description: "中远距离精英射手，兼顾高爆发与持续压制。"},
	{Slug: "tracer", Name: "猎空", Role: "输出", Description: "超高机动骚扰英雄，偏好小巧不遮挡的准星。"},
	{Slug: "echo", Name: "回声", Role: "输出", Description: "空中多形态伤害，需要兼顾空战与地面交战。"},
	{Slug: "soldier-76", Name: "士兵76", Role: "输出", Description: "全能型突击手，适合标准十字准星追踪。"},
	{Slug: "cassidy", Name: "卡西迪", Role: "输出", Description: "手炮爆发输出，需要稳定跟枪与点射切换。"},
	{Slug: "pharah", Name: "法老之鹰", Role: "输出", Description: "火箭空投型英雄，关注爆炸范围与落点。"},
	{Slug: "hanzo", Name: "半藏", Role: "输出", Description: "弓箭爆发英雄，准星辅助判断抛物线与引导箭。"},
	{Slug: "sojourn", Name: "索杰恩", Role: "输出", Description: "轨道炮射手，追求线性跟踪与充能狙击反馈。"},
	{Slug: "junkrat", Name: "狂鼠", Role: "输出", Description: "区域封锁爆破专家，便于估算弹道落点。"},
	{Slug: "torbjorn", Name: "托比昂", Role: "输出", Description: "炮台工程师，兼顾主武器散射与副武器抛射。"},
	{Slug: "reaper", Name: "死神", Role: "输出", Description: "近身霰弹爆发，需要掌握散射覆盖范围。"},
	{Slug: "symmetra", Name: "秩序之光", Role: "输出", Description: "光束/光球双模式，需要能量积累与远程抛射指引。"},
}

var (
	bySlug = make(map[string]Hero, len(Catalog))
	byName = make(map[string]Hero, len(Catalog))
)

func init() {
	for _, h := range Catalog {
		bySlug[h.Slug] = h
		byName[h.Name] = h
	}
}

// BySlug returns the hero with the given canonical slug.
func BySlug(slug string) (Hero, bool) {
	h, ok := bySlug[slug]
	return h, ok
}

// Resolve looks a hero up by slug or display name.
func Resolve(identifier string) (Hero, bool) {
	if h, ok := bySlug[identifier]; ok {
		return h, true
	}
	h, ok := byName[identifier]
	return h, ok
}

// CanonicalSlug maps a slug or display name to the canonical slug. Unknown
// identifiers are returned unchanged so callers stay permissive.
func CanonicalSlug(identifier string) string {
	if h, ok := Resolve(identifier); ok {
		return h.Slug
	}
	return identifier
}

// IdentifierVariants returns every stored form a hero filter must match:
// the canonical slug plus the display-name alias. Unknown identifiers get a
// single-element slice so filtering still matches rows that stored them
// verbatim.
func IdentifierVariants(identifier string) []string {
	h, ok := Resolve(identifier)
	if !ok {
		return []string{identifier}
	}
	if h.Slug == h.Name {
		return []string{h.Slug}
	}
	return []string{h.Slug, h.Name}
}
