package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func HandleSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      http.StatusOK,
		RequestID: getRequestID(c),
		Warnings:  getWarnings(c),
	})
}

func HandleCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, &Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Code:      http.StatusCreated,
		RequestID: getRequestID(c),
		Warnings:  getWarnings(c),
	})
}

func HandlePaginated(c *gin.Context, data interface{}, pagination Pagination, message string) {
	c.JSON(http.StatusOK, &PaginatedResponse{
		Success:    true,
		Data:       data,
		Pagination: pagination,
		Message:    message,
		Code:       http.StatusOK,
		RequestID:  getRequestID(c),
		Warnings:   getWarnings(c),
	})
}
