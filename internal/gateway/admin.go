package gateway

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"stibap_portal/internal/model"
)

type adminUsersResponse struct {
	Users []model.User `json:"users"`
}

func (c *Client) AdminUsers(ctx context.Context) ([]model.User, error) {
	env, err := c.Request(ctx, "/api/admin/users", RequestOptions{Auth: true})
	if err != nil {
		return nil, err
	}
	// 兼容 {users: [...]} 与 {data: [...]} 两种返回
	if len(env.Data) > 0 && string(env.Data) != "null" {
		return decodeData[[]model.User](env)
	}
	resp, err := decodeRaw[adminUsersResponse](env)
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) AdminUpdateUser(ctx context.Context, userID string, update model.AdminUserUpdate) error {
	_, err := c.Request(ctx, "/api/admin/users/"+pathEscape(userID), RequestOptions{
		Method:   http.MethodPut,
		Body:     update,
		Auth:     true,
		Endpoint: "/api/admin/users/{id}",
	})
	return err
}

func (c *Client) AdminCourses(ctx context.Context) ([]model.Course, error) {
	env, err := c.Request(ctx, "/api/admin/courses", RequestOptions{Auth: true})
	if err != nil {
		return nil, err
	}
	return decodeData[[]model.Course](env)
}

func (c *Client) AdminCreateCourse(ctx context.Context, input model.CourseInput) (*model.Course, error) {
	env, err := c.Request(ctx, "/api/admin/courses", RequestOptions{
		Method: http.MethodPost,
		Body:   input,
		Auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Course](env)
}

func (c *Client) AdminUpdateCourse(ctx context.Context, courseID string, input model.CourseInput) (*model.Course, error) {
	env, err := c.Request(ctx, "/api/admin/courses/"+pathEscape(courseID), RequestOptions{
		Method:   http.MethodPut,
		Body:     input,
		Auth:     true,
		Endpoint: "/api/admin/courses/{id}",
	})
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Course](env)
}

func (c *Client) AdminDeleteCourse(ctx context.Context, courseID string) error {
	_, err := c.Request(ctx, "/api/admin/courses/"+pathEscape(courseID), RequestOptions{
		Method:   http.MethodDelete,
		Auth:     true,
		Endpoint: "/api/admin/courses/{id}",
	})
	return err
}

// ImportCourseBundle 上传课程压缩包；courseID 非空时覆盖已有课程
func (c *Client) ImportCourseBundle(ctx context.Context, filename string, r io.Reader, courseID string) (*model.ImportResult, error) {
	opts := RequestOptions{
		Method: http.MethodPost,
		Auth:   true,
		Upload: &Upload{Field: "file", Filename: filename, Reader: r},
	}
	if courseID != "" {
		opts.Query = url.Values{"course_id": {courseID}}
	}
	env, err := c.Request(ctx, "/api/admin/courses/import", opts)
	if err != nil {
		return nil, err
	}
	result, err := decodeRaw[model.ImportResult](env)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReloadCourses(ctx context.Context) error {
	_, err := c.Request(ctx, "/api/admin/reload-courses", RequestOptions{
		Method: http.MethodPost,
		Auth:   true,
	})
	return err
}
