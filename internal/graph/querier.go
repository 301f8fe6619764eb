// Package graph answers culinary questions against the Neo4j recipe
// knowledge graph, either through LLM-generated Cypher or through
// predefined query templates.
package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jhlu2019/GustoBot-sub001/internal/config"
	"github.com/jhlu2019/GustoBot-sub001/internal/observability"
	"github.com/jhlu2019/GustoBot-sub001/internal/types"
)

// Querier abstracts read access to the knowledge graph so the Cypher and
// template tools can be tested without a live database.
type Querier interface {
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
	// SchemaForPrompt renders the graph schema for generation prompts.
	SchemaForPrompt() string
	Health(ctx context.Context) types.HealthStatus
	Close(ctx context.Context) error
}

// schemaPrompt describes the recipe graph: labels, relationships and the
// properties Cypher generation may reference.
const schemaPrompt = `节点标签：
- Dish(name, cook_time, instructions)：菜品
- Ingredient(name)：食材
- Flavor(name)：口味
- CookingMethod(name)：烹饪方法
- DishType(name)：菜品类别
- CookingStep(order, instruction)：烹饪步骤
- NutritionProfile(name)：营养成分
- HealthBenefit(name)：健康功效
关系类型：
- (Dish)-[:HAS_MAIN_INGREDIENT {amount_text}]->(Ingredient)：主料及用量
- (Dish)-[:HAS_AUX_INGREDIENT {amount_text}]->(Ingredient)：辅料及用量
- (Dish)-[:HAS_FLAVOR]->(Flavor)
- (Dish)-[:USES_METHOD]->(CookingMethod)
- (Dish)-[:BELONGS_TO_TYPE]->(DishType)
- (Dish)-[:HAS_STEP {order}]->(CookingStep)
- (Ingredient)-[:HAS_NUTRITION_PROFILE]->(NutritionProfile)
- (Ingredient)-[:HAS_HEALTH_BENEFIT]->(HealthBenefit)`

// Neo4jQuerier runs read-only Cypher against a Neo4j instance.
type Neo4jQuerier struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *observability.TracedLogger
}

// NewNeo4jQuerier connects to the configured Neo4j instance.
func NewNeo4jQuerier(cfg config.Neo4jConfig, logger *observability.TracedLogger) (*Neo4jQuerier, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.PoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.PoolSize
			}
		},
	)
	if err != nil {
		return nil, types.WrapError(types.GRAPH_CONNECTION_FAILED, "failed to create neo4j driver", err)
	}
	return &Neo4jQuerier{driver: driver, database: cfg.Database, logger: logger}, nil
}

// ExecuteRead runs a read transaction and returns the records as maps.
func (q *Neo4jQuerier) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	result, err := neo4j.ExecuteQuery(ctx, q.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(q.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, types.WrapRetryableError(types.CYPHER_EXECUTION_FAILED, "cypher execution failed", err)
	}

	records := make([]map[string]any, 0, len(result.Records))
	for _, rec := range result.Records {
		records = append(records, rec.AsMap())
	}
	if q.logger != nil {
		q.logger.Debug(ctx, "cypher executed", "records", len(records))
	}
	return records, nil
}

// SchemaForPrompt returns the recipe graph schema rendered for prompts.
func (q *Neo4jQuerier) SchemaForPrompt() string {
	return schemaPrompt
}

// Health verifies connectivity to the graph database.
func (q *Neo4jQuerier) Health(ctx context.Context) types.HealthStatus {
	if err := q.driver.VerifyConnectivity(ctx); err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("")
}

// Close shuts the driver down.
func (q *Neo4jQuerier) Close(ctx context.Context) error {
	return q.driver.Close(ctx)
}
