package style

import "fmt"

// Field identifies one style key. The constants are the JSON keys, so the
// editor payloads and the stored override records share a single vocabulary.
type Field string

const (
	FieldShowTitle Field = "showTitle"
	FieldShowBody  Field = "showBody"

	FieldTitleFont       Field = "titleFont"
	FieldTitleSize       Field = "titleSize"
	FieldTitleColor      Field = "titleColor"
	FieldTitleOffsetX    Field = "titleOffsetX"
	FieldTitleOffsetY    Field = "titleOffsetY"
	FieldTitleScale      Field = "titleScale"
	FieldTitleBgEnabled  Field = "titleBgEnabled"
	FieldTitleBgColor    Field = "titleBgColor"
	FieldTitleBgOpacity  Field = "titleBgOpacity"
	FieldTitleBgGradient Field = "titleBgGradient"
	FieldTitleBgRadius   Field = "titleBgRadius"
	FieldTitleBgWidth    Field = "titleBgWidth"
	FieldTitleBgPaddingX Field = "titleBgPaddingX"
	FieldTitleBgPaddingY Field = "titleBgPaddingY"

	FieldBodyFont       Field = "bodyFont"
	FieldBodySize       Field = "bodySize"
	FieldBodyColor      Field = "bodyColor"
	FieldBodyOffsetX    Field = "bodyOffsetX"
	FieldBodyOffsetY    Field = "bodyOffsetY"
	FieldBodyScale      Field = "bodyScale"
	FieldBodyBgEnabled  Field = "bodyBgEnabled"
	FieldBodyBgColor    Field = "bodyBgColor"
	FieldBodyBgOpacity  Field = "bodyBgOpacity"
	FieldBodyBgGradient Field = "bodyBgGradient"
	FieldBodyBgRadius   Field = "bodyBgRadius"
	FieldBodyBgWidth    Field = "bodyBgWidth"
	FieldBodyBgPaddingX Field = "bodyBgPaddingX"
	FieldBodyBgPaddingY Field = "bodyBgPaddingY"

	FieldContainerColor    Field = "containerColor"
	FieldContainerOpacity  Field = "containerOpacity"
	FieldContainerBlur     Field = "containerBlur"
	FieldContainerRadius   Field = "containerRadius"
	FieldContainerWidth    Field = "containerWidth"
	FieldContainerHeight   Field = "containerHeight"
	FieldContainerScope    Field = "containerScope"
	FieldContainerGradient Field = "containerGradient"
	FieldIsTransparent     Field = "isTransparent"

	FieldImageBrightness Field = "imageBrightness"
	FieldImageSaturation Field = "imageSaturation"
	FieldImageScale      Field = "imageScale"
	FieldImageOffsetX    Field = "imageOffsetX"
	FieldImageOffsetY    Field = "imageOffsetY"
	FieldImageRepeat     Field = "imageRepeat"
)

// Set writes one field into the override. Setting a solid color clears the
// paired gradient of the same region, and setting a gradient activates it as
// the single fill source; only one of the pair is live at evaluation time.
// Unknown fields and type mismatches return an error, nothing is written.
func (o *Override) Set(field Field, value any) error {
	switch field {
	case FieldShowTitle:
		return setBool(&o.ShowTitle, field, value)
	case FieldShowBody:
		return setBool(&o.ShowBody, field, value)

	case FieldTitleFont:
		return setString(&o.TitleFont, field, value)
	case FieldTitleSize:
		return setNumber(&o.TitleSize, field, value)
	case FieldTitleColor:
		return setString(&o.TitleColor, field, value)
	case FieldTitleOffsetX:
		return setNumber(&o.TitleOffsetX, field, value)
	case FieldTitleOffsetY:
		return setNumber(&o.TitleOffsetY, field, value)
	case FieldTitleScale:
		return setNumber(&o.TitleScale, field, value)
	case FieldTitleBgEnabled:
		return setBool(&o.TitleBgEnabled, field, value)
	case FieldTitleBgColor:
		if err := setString(&o.TitleBgColor, field, value); err != nil {
			return err
		}
		o.TitleBgGradient = Some[*string](nil)
		return nil
	case FieldTitleBgOpacity:
		return setNumber(&o.TitleBgOpacity, field, value)
	case FieldTitleBgGradient:
		return setGradient(&o.TitleBgGradient, field, value)
	case FieldTitleBgRadius:
		return setNumber(&o.TitleBgRadius, field, value)
	case FieldTitleBgWidth:
		return setNumber(&o.TitleBgWidth, field, value)
	case FieldTitleBgPaddingX:
		return setNumber(&o.TitleBgPaddingX, field, value)
	case FieldTitleBgPaddingY:
		return setNumber(&o.TitleBgPaddingY, field, value)

	case FieldBodyFont:
		return setString(&o.BodyFont, field, value)
	case FieldBodySize:
		return setNumber(&o.BodySize, field, value)
	case FieldBodyColor:
		return setString(&o.BodyColor, field, value)
	case FieldBodyOffsetX:
		return setNumber(&o.BodyOffsetX, field, value)
	case FieldBodyOffsetY:
		return setNumber(&o.BodyOffsetY, field, value)
	case FieldBodyScale:
		return setNumber(&o.BodyScale, field, value)
	case FieldBodyBgEnabled:
		return setBool(&o.BodyBgEnabled, field, value)
	case FieldBodyBgColor:
		if err := setString(&o.BodyBgColor, field, value); err != nil {
			return err
		}
		o.BodyBgGradient = Some[*string](nil)
		return nil
	case FieldBodyBgOpacity:
		return setNumber(&o.BodyBgOpacity, field, value)
	case FieldBodyBgGradient:
		return setGradient(&o.BodyBgGradient, field, value)
	case FieldBodyBgRadius:
		return setNumber(&o.BodyBgRadius, field, value)
	case FieldBodyBgWidth:
		return setNumber(&o.BodyBgWidth, field, value)
	case FieldBodyBgPaddingX:
		return setNumber(&o.BodyBgPaddingX, field, value)
	case FieldBodyBgPaddingY:
		return setNumber(&o.BodyBgPaddingY, field, value)

	case FieldContainerColor:
		if err := setString(&o.ContainerColor, field, value); err != nil {
			return err
		}
		o.ContainerGradient = Some[*string](nil)
		return nil
	case FieldContainerOpacity:
		return setNumber(&o.ContainerOpacity, field, value)
	case FieldContainerBlur:
		return setNumber(&o.ContainerBlur, field, value)
	case FieldContainerRadius:
		return setNumber(&o.ContainerRadius, field, value)
	case FieldContainerWidth:
		return setNumber(&o.ContainerWidth, field, value)
	case FieldContainerHeight:
		return setNumber(&o.ContainerHeight, field, value)
	case FieldContainerScope:
		s, ok := value.(string)
		if !ok {
			return typeErr(field, value)
		}
		scope := ContainerScope(s)
		switch scope {
		case ScopeBoth, ScopeTitle, ScopeBody:
			o.ContainerScope = Some(scope)
			return nil
		}
		return fmt.Errorf("style: invalid container scope %q", s)
	case FieldContainerGradient:
		return setGradient(&o.ContainerGradient, field, value)
	case FieldIsTransparent:
		return setBool(&o.IsTransparent, field, value)

	case FieldImageBrightness:
		return setNumber(&o.ImageBrightness, field, value)
	case FieldImageSaturation:
		return setNumber(&o.ImageSaturation, field, value)
	case FieldImageScale:
		return setNumber(&o.ImageScale, field, value)
	case FieldImageOffsetX:
		return setNumber(&o.ImageOffsetX, field, value)
	case FieldImageOffsetY:
		return setNumber(&o.ImageOffsetY, field, value)
	case FieldImageRepeat:
		return setBool(&o.ImageRepeat, field, value)
	}
	return fmt.Errorf("style: unknown field %q", field)
}

// SetGlobal writes one field into a global style by applying a single-field
// override, so scope=global and scope=individual edits share one code path
// (including the color/gradient exclusion).
func SetGlobal(s *SlideStyle, field Field, value any) error {
	var o Override
	if err := o.Set(field, value); err != nil {
		return err
	}
	o.applyTo(s)
	return nil
}

func setBool(dst *Opt[bool], field Field, value any) error {
	v, ok := value.(bool)
	if !ok {
		return typeErr(field, value)
	}
	*dst = Some(v)
	return nil
}

func setString(dst *Opt[string], field Field, value any) error {
	v, ok := value.(string)
	if !ok {
		return typeErr(field, value)
	}
	*dst = Some(v)
	return nil
}

func setNumber(dst *Opt[float64], field Field, value any) error {
	switch v := value.(type) {
	case float64:
		*dst = Some(v)
	case int:
		*dst = Some(float64(v))
	default:
		return typeErr(field, value)
	}
	return nil
}

func setGradient(dst *Opt[*string], field Field, value any) error {
	switch v := value.(type) {
	case nil:
		*dst = Some[*string](nil)
	case string:
		*dst = Some(&v)
	case *string:
		*dst = Some(v)
	default:
		return typeErr(field, value)
	}
	return nil
}

func typeErr(field Field, value any) error {
	return fmt.Errorf("style: invalid value %T for field %q", value, field)
}
