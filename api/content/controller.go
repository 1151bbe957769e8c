/*
Package content 后台资源的通用 CRUD 控制器。

每个资源一个 Controller 实例，挂载在 /<path> 下：

	GET    /<path>            列表；同时提供 page 与 page_size 时分页
	GET    /<path>/:id
	POST   /<path>
	PATCH  /<path>/:id        部分更新
	DELETE /<path>/:id
*/
package content

import (
	"encoding/json"
	"net/http"
	"strconv"

	"expoadmin/api/ctxutil"
	"expoadmin/api/response"
	"expoadmin/domain/resource"
	"expoadmin/domain/shared"

	"github.com/gin-gonic/gin"
)

type Controller[T any, P shared.Record[T]] struct {
	path   string
	client resource.Client[T]
	name   string
}

func NewController[T any, P shared.Record[T]](path string, client resource.Client[T]) *Controller[T, P] {
	var zero T
	return &Controller[T, P]{path: path, client: client, name: shared.EntityName(P(&zero))}
}

func (ctrl *Controller[T, P]) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/" + ctrl.path)
	g.GET("", ctrl.List)
	g.GET("/:id", ctrl.Get)
	g.POST("", ctrl.Create)
	g.PATCH("/:id", ctrl.Update)
	g.DELETE("/:id", ctrl.Delete)
}

func (ctrl *Controller[T, P]) List(c *gin.Context) {
	page, pageSize, err := pageParams(c)
	if err != nil {
		response.HandleError(c, err, "page and page_size must be integers", http.StatusBadRequest)
		return
	}
	ctx := ctxutil.WithRequestID(c)

	if page == 0 || pageSize == 0 {
		items, err := ctrl.client.List(ctx)
		if err != nil {
			response.HandleAppError(c, err)
			return
		}
		response.HandleSuccess(c, resource.PageResult[T]{Items: nonNil(items), Total: int64(len(items))}, "ok")
		return
	}

	if err := resource.CheckPage(page, pageSize); err != nil {
		response.HandleAppError(c, err)
		return
	}
	items, total, err := ctrl.client.ListPage(ctx, page, pageSize)
	if err != nil {
		response.HandleAppError(c, err)
		return
	}
	response.HandlePaginated(c, nonNil(items), response.NewPagination(page, pageSize, total), "ok")
}

func (ctrl *Controller[T, P]) Get(c *gin.Context) {
	item, err := ctrl.client.GetByID(ctxutil.WithRequestID(c), c.Param("id"))
	if err != nil {
		response.HandleAppError(c, err)
		return
	}
	response.HandleSuccess(c, item, "ok")
}

func (ctrl *Controller[T, P]) Create(c *gin.Context) {
	fields, ok := ctrl.bindFields(c)
	if !ok {
		return
	}
	item, err := ctrl.client.Create(ctxutil.WithRequestID(c), fields)
	if err != nil {
		response.HandleAppError(c, err)
		return
	}
	response.HandleCreated(c, item, ctrl.name+" created")
}

func (ctrl *Controller[T, P]) Update(c *gin.Context) {
	fields, ok := ctrl.bindFields(c)
	if !ok {
		return
	}
	item, err := ctrl.client.Update(ctxutil.WithRequestID(c), c.Param("id"), fields)
	if err != nil {
		response.HandleAppError(c, err)
		return
	}
	response.HandleSuccess(c, item, ctrl.name+" updated")
}

// Delete 成功返回 {"deleted": true}；不存在返回 404
func (ctrl *Controller[T, P]) Delete(c *gin.Context) {
	ok, err := ctrl.client.Delete(ctxutil.WithRequestID(c), c.Param("id"))
	if err != nil {
		response.HandleAppError(c, err)
		return
	}
	response.HandleSuccess(c, gin.H{"deleted": ok}, ctrl.name+" deleted")
}

func (ctrl *Controller[T, P]) bindFields(c *gin.Context) (resource.Fields, bool) {
	var fields resource.Fields
	if err := json.NewDecoder(c.Request.Body).Decode(&fields); err != nil {
		response.HandleError(c, err, "request body must be a JSON object", http.StatusBadRequest)
		return nil, false
	}
	if fields == nil {
		fields = resource.Fields{}
	}
	return fields, true
}

// pageParams 缺省参数返回 0
func pageParams(c *gin.Context) (int, int, error) {
	parse := func(key string) (int, error) {
		v := c.Query(key)
		if v == "" {
			return 0, nil
		}
		return strconv.Atoi(v)
	}
	page, err := parse("page")
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := parse("page_size")
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func nonNil[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}
