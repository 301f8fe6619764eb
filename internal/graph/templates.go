package graph

import (
	"sort"

	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Template is one predefined read-only Cypher query with a semantic
// description used for matching questions to templates.
type Template struct {
	Name        string
	Description string
	Cypher      string
}

// RequiredParams lists the $parameters the template needs filled.
func (t Template) RequiredParams() []string {
	return RequiredParams(t.Cypher)
}

// Registry holds the predefined query templates keyed by name.
type Registry struct {
	templates map[string]Template
}

// NewRegistry builds the registry over the built-in recipe templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]Template, len(recipeTemplates))}
	for _, t := range recipeTemplates {
		r.templates[t.Name] = t
	}
	return r
}

// Get looks a template up by name.
func (r *Registry) Get(name string) (Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return Template{}, types.NewError(types.TEMPLATE_NOT_FOUND, "no predefined query named "+name)
	}
	return t, nil
}

// All returns every template, sorted by name for stable iteration.
func (r *Registry) All() []Template {
	out := make([]Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// recipeTemplates cover the recurring question shapes over the recipe
// graph: dish properties, constraint filters, ingredient relations,
// amounts, steps, nutrition, statistics and recommendations.
var recipeTemplates = []Template{
	{
		Name:        "dish_instructions",
		Description: "查询指定菜品的完整做法文本，适用于用户想了解整道菜的烹饪步骤和细节。",
		Cypher: `MATCH (d:Dish {name: $dish_name})
RETURN d.name AS 菜名, d.instructions AS 做法`,
	},
	{
		Name:        "dish_cook_time",
		Description: "查询某道菜的烹饪耗时信息，适用于用户询问这道菜需要多久能完成。",
		Cypher: `MATCH (d:Dish {name: $dish_name})
RETURN d.name AS 菜名, d.cook_time AS 耗时`,
	},
	{
		Name:        "dish_flavor",
		Description: "查询菜品关联的口味标签，适用于用户想知道一道菜是什么口味或适合的风味偏好。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[:HAS_FLAVOR]->(f:Flavor)
RETURN d.name AS 菜名, collect(f.name) AS 口味`,
	},
	{
		Name:        "dish_cooking_method",
		Description: "查询菜品所使用的烹饪工艺，适用于用户关注菜是炒、蒸、炖等哪种做法。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[:USES_METHOD]->(m:CookingMethod)
RETURN d.name AS 菜名, collect(m.name) AS 工艺`,
	},
	{
		Name:        "dish_type",
		Description: "查询菜品所属的菜式分类，适用于用户了解这道菜是热菜、凉菜或其他类型。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[:BELONGS_TO_TYPE]->(t:DishType)
RETURN d.name AS 菜名, collect(t.name) AS 类型`,
	},
	{
		Name:        "dish_complete_info",
		Description: "汇总菜品的耗时、做法、口味、工艺与类型等综合信息，适用于需要一次性掌握菜谱全貌的场景。",
		Cypher: `MATCH (d:Dish {name: $dish_name})
OPTIONAL MATCH (d)-[:HAS_FLAVOR]->(f:Flavor)
OPTIONAL MATCH (d)-[:USES_METHOD]->(m:CookingMethod)
OPTIONAL MATCH (d)-[:BELONGS_TO_TYPE]->(t:DishType)
RETURN d.name AS 菜名,
       d.cook_time AS 耗时,
       d.instructions AS 做法,
       collect(DISTINCT f.name) AS 口味,
       collect(DISTINCT m.name) AS 工艺,
       collect(DISTINCT t.name) AS 类型`,
	},
	{
		Name:        "dishes_by_flavor",
		Description: "根据口味标签筛选菜品，适用于用户想找同一口味的多道菜。",
		Cypher: `MATCH (d:Dish)-[:HAS_FLAVOR]->(f:Flavor {name: $flavor_name})
RETURN d.name AS 菜名 LIMIT 15`,
	},
	{
		Name:        "dishes_by_method",
		Description: "按烹饪工艺筛选菜品，适用于用户想要类似炒、蒸等特定做法的菜谱。",
		Cypher: `MATCH (d:Dish)-[:USES_METHOD]->(m:CookingMethod {name: $method_name})
RETURN d.name AS 菜名 LIMIT 15`,
	},
	{
		Name:        "dishes_by_type",
		Description: "按菜品类型筛选菜谱，适用于用户想按热菜、家常菜等分类查找菜。",
		Cypher: `MATCH (d:Dish)-[:BELONGS_TO_TYPE]->(t:DishType {name: $type_name})
RETURN d.name AS 菜名 LIMIT 15`,
	},
	{
		Name:        "dishes_by_multi_constraints",
		Description: "同时按口味和烹饪工艺筛选菜品，适用于用户提出多条件组合需求时。",
		Cypher: `MATCH (d:Dish)
WHERE
  EXISTS((d)-[:HAS_FLAVOR]->(:Flavor {name: $flavor_name}))
  AND EXISTS((d)-[:USES_METHOD]->(:CookingMethod {name: $method_name}))
RETURN d.name AS 菜名 LIMIT 15`,
	},
	{
		Name:        "dishes_by_main_ingredient",
		Description: "根据主食材反查菜品，适用于用户想知道某种食材能做哪些主料菜。",
		Cypher: `MATCH (d:Dish)-[r:HAS_MAIN_INGREDIENT]->(i:Ingredient {name: $ingredient_name})
RETURN d.name AS 菜名, type(r) AS 关系 LIMIT 15`,
	},
	{
		Name:        "dishes_by_aux_ingredient",
		Description: "根据辅料或调味料反查菜品，适用于用户想利用某个辅料安排菜谱。",
		Cypher: `MATCH (d:Dish)-[r:HAS_AUX_INGREDIENT]->(i:Ingredient {name: $ingredient_name})
RETURN d.name AS 菜名, type(r) AS 关系 LIMIT 15`,
	},
	{
		Name:        "ingredients_of_dish",
		Description: "列出菜品所有主辅食材及用量，适用于用户想完整掌握这道菜需要准备的材料。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[r]->(i:Ingredient)
WHERE type(r) IN ['HAS_MAIN_INGREDIENT', 'HAS_AUX_INGREDIENT']
RETURN i.name AS 食材, type(r) AS 关系类型, r.amount_text AS 用量`,
	},
	{
		Name:        "main_ingredients_of_dish",
		Description: "仅查询菜品的主食材和对应用量，适用于强调菜品主体食材的场景。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[r:HAS_MAIN_INGREDIENT]->(i:Ingredient)
RETURN i.name AS 主食材, r.amount_text AS 用量`,
	},
	{
		Name:        "aux_ingredients_of_dish",
		Description: "仅查询菜品的辅料或调味料及用量，适用于用户关注配料或调味细节。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[r:HAS_AUX_INGREDIENT]->(i:Ingredient)
RETURN i.name AS 辅料, r.amount_text AS 用量`,
	},
	{
		Name:        "ingredient_amount_in_dish",
		Description: "查询某道菜中指定食材的用量，无论是主料还是辅料，适用于确认单一食材份量。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[r]->(i:Ingredient {name: $ingredient_name})
WHERE type(r) IN ['HAS_MAIN_INGREDIENT', 'HAS_AUX_INGREDIENT']
RETURN r.amount_text AS 用量`,
	},
	{
		Name:        "main_ingredient_amount",
		Description: "查询菜品中某个主食材的用量，适用于主料精确配比的需求。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[r:HAS_MAIN_INGREDIENT]->(i:Ingredient {name: $ingredient_name})
RETURN r.amount_text AS 用量`,
	},
	{
		Name:        "aux_ingredient_amount",
		Description: "查询菜品中某个辅料的用量，适用于调味料或辅料的定量问题。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[r:HAS_AUX_INGREDIENT]->(i:Ingredient {name: $ingredient_name})
RETURN r.amount_text AS 用量`,
	},
	{
		Name:        "cooking_steps",
		Description: "按顺序列出菜品的全部烹饪步骤，适用于用户想逐步学习做法。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[r:HAS_STEP]->(s:CookingStep)
RETURN s.order AS 步骤序号, s.instruction AS 步骤说明
ORDER BY s.order`,
	},
	{
		Name:        "step_by_order",
		Description: "查询菜品在特定步骤号对应的烹饪说明，适用于用户追问某一步的详细说明。",
		Cypher: `MATCH (d:Dish {name: $dish_name})-[r:HAS_STEP]->(s:CookingStep {order: $step_order})
RETURN s.order AS 步骤序号, s.instruction AS 步骤说明`,
	},
	{
		Name:        "ingredient_nutrition",
		Description: "查询食材的营养档案描述，适用于用户想知道食材的营养价值。",
		Cypher: `MATCH (i:Ingredient {name: $ingredient_name})-[:HAS_NUTRITION_PROFILE]->(n:NutritionProfile)
RETURN i.name AS 食材, n.description AS 营养档案`,
	},
	{
		Name:        "ingredient_health_benefits",
		Description: "查询食材关联的食疗功效标签，适用于用户关注食疗或健康益处的问题。",
		Cypher: `MATCH (i:Ingredient {name: $ingredient_name})-[:HAS_HEALTH_BENEFIT]->(h:HealthBenefit)
RETURN i.name AS 食材, collect(h.name) AS 功效`,
	},
	{
		Name:        "ingredient_complete_info",
		Description: "综合查询食材的营养说明与功效列表，适用于需要全方位了解食材的场景。",
		Cypher: `MATCH (i:Ingredient {name: $ingredient_name})
OPTIONAL MATCH (i)-[:HAS_NUTRITION_PROFILE]->(n:NutritionProfile)
OPTIONAL MATCH (i)-[:HAS_HEALTH_BENEFIT]->(h:HealthBenefit)
RETURN i.name AS 食材,
       n.description AS 营养档案,
       collect(DISTINCT h.name) AS 功效`,
	},
	{
		Name:        "most_used_cooking_methods",
		Description: "统计最常见的烹饪工艺及使用次数，适用于用户想了解热门做法趋势。",
		Cypher: `MATCH (d:Dish)-[:USES_METHOD]->(m:CookingMethod)
WITH m.name AS 烹饪方法, count(d) AS 使用次数
RETURN 烹饪方法, 使用次数
ORDER BY 使用次数 DESC LIMIT 10`,
	},
	{
		Name:        "most_popular_flavors",
		Description: "统计最常见的口味标签及对应菜品数量，适用于了解流行口味。",
		Cypher: `MATCH (d:Dish)-[:HAS_FLAVOR]->(f:Flavor)
WITH f.name AS 口味, count(d) AS 菜品数量
RETURN 口味, 菜品数量
ORDER BY 菜品数量 DESC LIMIT 10`,
	},
	{
		Name:        "ingredient_usage_count",
		Description: "统计某个食材在多少道菜中出现，适用于评估食材用途广度。",
		Cypher: `MATCH (d:Dish)-[r]->(i:Ingredient {name: $ingredient_name})
WHERE type(r) IN ['HAS_MAIN_INGREDIENT', 'HAS_AUX_INGREDIENT']
WITH count(DISTINCT d) AS 菜品数量
RETURN 菜品数量`,
	},
	{
		Name:        "dishes_count_by_type",
		Description: "统计各菜品类型下的菜数量，适用于查看菜谱类型分布。",
		Cypher: `MATCH (d:Dish)-[:BELONGS_TO_TYPE]->(t:DishType)
WITH t.name AS 菜品类型, count(d) AS 菜品数量
RETURN 菜品类型, 菜品数量
ORDER BY 菜品数量 DESC`,
	},
	{
		Name:        "dishes_with_ingredients",
		Description: "根据指定食材推荐可做的菜品以及基本信息，适用于手头有某食材能做什么的问题。",
		Cypher: `MATCH (d:Dish)-[r:HAS_MAIN_INGREDIENT]->(i:Ingredient {name: $ingredient_name})
RETURN d.name AS 菜名, d.instructions AS 做法, d.cook_time AS 耗时
LIMIT 10`,
	},
	{
		Name:        "similar_dishes",
		Description: "基于口味标签寻找与目标菜相似的其他菜，适用于想找同风格菜谱的用户。",
		Cypher: `MATCH (d1:Dish {name: $dish_name})-[:HAS_FLAVOR]->(f:Flavor)<-[:HAS_FLAVOR]-(d2:Dish)
WHERE d1 <> d2
WITH d2, count(f) AS 共同口味数
RETURN d2.name AS 相似菜品, 共同口味数
ORDER BY 共同口味数 DESC LIMIT 10`,
	},
	{
		Name:        "similar_dishes_by_method",
		Description: "基于烹饪工艺寻找与目标菜相似的菜，适用于想尝试相同做法的其他菜品。",
		Cypher: `MATCH (d1:Dish {name: $dish_name})-[:USES_METHOD]->(m:CookingMethod)<-[:USES_METHOD]-(d2:Dish)
WHERE d1 <> d2
RETURN d2.name AS 相似菜品, m.name AS 共同工艺
LIMIT 10`,
	},
}
