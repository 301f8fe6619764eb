package graph

import (
	"regexp"
	"sort"
	"strings"
)

// IntentClass buckets a question by the graph pattern that answers it.
type IntentClass string

const (
	IntentRecipeProperty         IntentClass = "recipe_property"
	IntentPropertyConstraint     IntentClass = "property_constraint"
	IntentRelationshipConstraint IntentClass = "relationship_constraint"
	IntentRelationshipQuery      IntentClass = "relationship_query"
	IntentUnknown                IntentClass = ""
)

var (
	propertyKeywords = []string{"做法", "怎么做", "口味", "味道", "工艺", "类型", "多久", "耗时", "菜系", "步骤"}
	relationKeywords = []string{"主食材", "主要食材", "主要材料", "主料", "辅料", "由什么做", "做什么", "可以做", "要多少", "需要多少", "要用多少", "用量", "食材", "材料", "有哪些"}
	// seed lexicons for entity spotting; real deployments extend these
	// from the graph itself.
	dishLexicon       = []string{"红烧肉", "宫保鸡丁", "麻婆豆腐", "回锅肉", "鱼香肉丝", "水煮鱼", "水煮牛肉", "夫妻肺片", "辣子鸡", "酸菜鱼", "糖醋排骨", "香肠炒菜干"}
	ingredientLexicon = []string{"五花肉", "鸡胸肉", "豆腐", "鸡蛋", "牛肉", "猪肉", "鱼", "辣椒", "花椒", "葱", "姜", "蒜", "香菇", "茼蒿", "豆瓣酱"}
	flavorLexicon     = []string{"麻辣", "清淡", "酸辣", "咸鲜", "甜味", "香辣", "鱼香", "糖醋"}
	methodLexicon     = []string{"炒", "煮", "炖", "蒸", "炸", "烧", "烤", "凉拌", "爆"}
	typeLexicon       = []string{"热菜", "凉菜", "家常菜", "汤羹", "小吃", "主食"}
)

// Classifier assigns intent classes by spotting entity mentions and
// property/relation keywords.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify determines the intent class of a question, or IntentUnknown
// when nothing matches.
func (c *Classifier) Classify(question string) IntentClass {
	hasDish := containsAny(question, dishLexicon)
	hasIngredient := containsAny(question, ingredientLexicon)
	hasProperty := containsAny(question, propertyKeywords)
	hasRelation := containsAny(question, relationKeywords)
	hasConstraint := containsAny(question, flavorLexicon) ||
		containsAny(question, methodLexicon) || containsAny(question, typeLexicon)

	switch {
	case hasDish && hasIngredient && !hasProperty:
		return IntentRelationshipQuery
	case hasDish && hasProperty:
		return IntentRecipeProperty
	case hasDish && hasRelation:
		return IntentRelationshipConstraint
	case !hasDish && hasIngredient && hasRelation:
		return IntentRelationshipConstraint
	case !hasDish && hasConstraint:
		return IntentPropertyConstraint
	default:
		return IntentUnknown
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// example pairs a natural question with the Cypher that answers it.
type example struct {
	question string
	cypher   string
}

var intentExamples = map[IntentClass][]example{
	IntentRecipeProperty: {
		{"红烧肉怎么做？", `MATCH (n:Dish {name: '红烧肉'}) RETURN n.instructions AS 做法`},
		{"红烧肉需要多长时间？", `MATCH (n:Dish {name: '红烧肉'}) RETURN n.cook_time AS 耗时`},
		{"红烧肉是什么口味？", `MATCH (n:Dish {name: '红烧肉'})-[:HAS_FLAVOR]->(m:Flavor) RETURN collect(m.name) AS 口味`},
		{"宫保鸡丁用什么工艺？", `MATCH (n:Dish {name: '宫保鸡丁'})-[:USES_METHOD]->(m:CookingMethod) RETURN collect(m.name) AS 工艺`},
	},
	IntentPropertyConstraint: {
		{"有哪些炒菜？", "MATCH (dish:Dish)\nMATCH (dish)-[:USES_METHOD]->(rel_0:CookingMethod {name: '炒'})\nRETURN dish.name AS name LIMIT 15"},
		{"麻辣口味的菜有哪些？", "MATCH (dish:Dish)\nMATCH (dish)-[:HAS_FLAVOR]->(rel_0:Flavor {name: '麻辣'})\nRETURN dish.name AS name LIMIT 15"},
		{"热菜类型的菜品", "MATCH (dish:Dish)\nMATCH (dish)-[:BELONGS_TO_TYPE]->(rel_0:DishType {name: '热菜'})\nRETURN dish.name AS name LIMIT 15"},
	},
	IntentRelationshipConstraint: {
		{"五花肉可以做什么菜？", "MATCH (dish:Dish)-[rel:HAS_MAIN_INGREDIENT]->(ingredient:Ingredient {name: '五花肉'})\nRETURN type(rel) AS relation, dish.name AS name LIMIT 15"},
		{"用鸡蛋做的菜有哪些？", "MATCH (dish:Dish)-[rel:HAS_AUX_INGREDIENT]->(ingredient:Ingredient {name: '鸡蛋'})\nRETURN type(rel) AS relation, dish.name AS name LIMIT 15"},
		{"红烧肉需要哪些食材？", "MATCH (dish:Dish {name: '红烧肉'})-[rel:HAS_MAIN_INGREDIENT]->(ingredient:Ingredient)\nRETURN type(rel) AS relation, ingredient.name AS name"},
	},
	IntentRelationshipQuery: {
		{"红烧肉需要多少五花肉？", "MATCH (dish:Dish {name: '红烧肉'})-[rel:HAS_MAIN_INGREDIENT]->(ingredient:Ingredient {name: '五花肉'})\nRETURN rel.amount_text AS amount_text"},
		{"宫保鸡丁的鸡胸肉用量", "MATCH (dish:Dish {name: '宫保鸡丁'})-[rel:HAS_MAIN_INGREDIENT]->(ingredient:Ingredient {name: '鸡胸肉'})\nRETURN rel.amount_text AS amount_text"},
	},
}

var generalExamples = []example{
	{"红烧肉的完整烹饪步骤", "MATCH (d:Dish {name: '红烧肉'})-[r:HAS_STEP]->(s:CookingStep)\nRETURN s.order AS 步骤序号, s.instruction AS 步骤说明\nORDER BY s.order"},
	{"五花肉的营养价值和功效", "MATCH (i:Ingredient {name: '五花肉'})\nOPTIONAL MATCH (i)-[:HAS_NUTRITION_PROFILE]->(n:NutritionProfile)\nOPTIONAL MATCH (i)-[:HAS_HEALTH_BENEFIT]->(h:HealthBenefit)\nRETURN i.name, n.description AS 营养, COLLECT(h.name) AS 功效"},
	{"麻辣口味的炒菜有哪些？", "MATCH (d:Dish)-[:HAS_FLAVOR]->(f:Flavor {name: '麻辣'}),\n      (d)-[:USES_METHOD]->(m:CookingMethod {name: '炒'})\nRETURN d.name AS 菜名 LIMIT 10"},
	{"最常用的烹饪方法", "MATCH (d:Dish)-[:USES_METHOD]->(m:CookingMethod)\nWITH m.name AS 方法, COUNT(d) AS 使用次数\nRETURN 方法, 使用次数\nORDER BY 使用次数 DESC LIMIT 5"},
}

// relevance keywords and their weights for example ranking.
var importantKeywords = map[string]int{
	"做法": 3, "怎么做": 3, "步骤": 3,
	"食材": 2, "用量": 2, "多少": 2,
	"口味": 2, "工艺": 2, "类型": 2,
	"营养": 2, "功效": 2,
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// ExampleRetriever picks few-shot Cypher examples for a question, keyed
// by its intent class and ranked by lexical overlap.
type ExampleRetriever struct {
	classifier *Classifier
}

// NewExampleRetriever creates an ExampleRetriever.
func NewExampleRetriever() *ExampleRetriever {
	return &ExampleRetriever{classifier: NewClassifier()}
}

// GetExamples formats up to k examples as "Question: ...\nCypher: ..."
// blocks separated by blank lines.
func (r *ExampleRetriever) GetExamples(question string, k int) string {
	if k <= 0 {
		k = 5
	}
	intent := r.classifier.Classify(question)

	candidates := make([]example, 0, 8)
	if bank, ok := intentExamples[intent]; ok {
		candidates = append(candidates, bank...)
	}
	if len(candidates) < k {
		candidates = append(candidates, generalExamples...)
	}

	type scored struct {
		ex    example
		score int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, ex := range candidates {
		ranked = append(ranked, scored{ex, relevance(ex, question)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	blocks := make([]string, 0, len(ranked))
	for _, s := range ranked {
		blocks = append(blocks, "Question: "+s.ex.question+"\nCypher: "+s.ex.cypher)
	}
	return strings.Join(blocks, "\n\n")
}

func relevance(ex example, question string) int {
	queryWords := wordSet(question)
	exampleWords := wordSet(ex.question)
	score := 0
	for w := range queryWords {
		if exampleWords[w] {
			score += 2
		}
	}
	for keyword, weight := range importantKeywords {
		if strings.Contains(question, keyword) && strings.Contains(ex.question, keyword) {
			score += weight
		}
	}
	return score
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		set[w] = true
	}
	return set
}
